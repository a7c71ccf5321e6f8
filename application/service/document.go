package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/domain/event"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/infrastructure/content"
	"github.com/pagekeep/doclink/internal/database"
	"github.com/pagekeep/doclink/internal/domain"
)

// DocumentCreateParams configures creating a document.
type DocumentCreateParams struct {
	TypeID      int64
	Label       string
	Description string
	Language    string
}

// DocumentUpdateParams configures updating a document's descriptive fields.
// An empty language keeps the current one.
type DocumentUpdateParams struct {
	Label       string
	Description string
	Language    string
}

// VersionCreateParams configures creating a document version. Content may
// be nil; the payload can be uploaded later.
type VersionCreateParams struct {
	DocumentID int64
	Comment    string
	Content    []byte
}

// VersionContent holds a version's payload together with its metadata.
type VersionContent struct {
	version document.Version
	data    []byte
}

// Version returns the version the payload belongs to.
func (c VersionContent) Version() document.Version { return c.version }

// Data returns the payload bytes.
func (c VersionContent) Data() []byte { return c.data }

// Document manages the document lifecycle: creation, descriptive edits,
// the trash cycle, hard deletion, and stored versions. Creating a document
// launches the workflows assigned to its type.
// Embeds Collection for Find/Get; writes go through the bespoke methods.
type Document struct {
	storage.Collection[document.Document]
	documents document.Store
	types     document.TypeStore
	versions  document.VersionStore
	content   *content.Store
	workflows *Workflow
	events    *Event
	logger    *slog.Logger
}

// NewDocument creates a new Document service.
func NewDocument(
	documents document.Store,
	types document.TypeStore,
	versions document.VersionStore,
	contentStore *content.Store,
	workflows *Workflow,
	events *Event,
	logger *slog.Logger,
) *Document {
	if logger == nil {
		logger = slog.Default()
	}
	return &Document{
		Collection: storage.NewCollection[document.Document](documents),
		documents:  documents,
		types:      types,
		versions:   versions,
		content:    contentStore,
		workflows:  workflows,
		events:     events,
		logger:     logger,
	}
}

// Create adds a document and launches the workflows assigned to its type.
func (s *Document) Create(ctx context.Context, actor access.User, params DocumentCreateParams) (document.Document, error) {
	if _, err := s.types.Get(ctx, params.TypeID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return document.Document{}, fmt.Errorf(
				"%w: document type %d does not exist", domain.ErrValidation, params.TypeID,
			)
		}
		return document.Document{}, fmt.Errorf("get document type: %w", err)
	}

	doc, err := document.NewDocument(params.TypeID, params.Label, params.Description, params.Language)
	if err != nil {
		return document.Document{}, err
	}

	saved, err := s.documents.Save(ctx, doc)
	if err != nil {
		return document.Document{}, fmt.Errorf("save document: %w", err)
	}

	if err := s.workflows.LaunchFor(ctx, actor, saved); err != nil {
		s.logger.Warn("failed to launch workflows",
			slog.Int64("document_id", saved.ID()),
			slog.String("error", err.Error()),
		)
	}
	s.commitDocumentEvent(ctx, event.TypeDocumentCreated, actor, saved.ID())

	s.logger.Info("document created",
		slog.Int64("document_id", saved.ID()),
		slog.String("uuid", saved.UUID().String()),
		slog.String("label", saved.Label()),
		slog.Int64("type_id", saved.TypeID()),
	)

	return saved, nil
}

// Update replaces a document's descriptive fields.
func (s *Document) Update(ctx context.Context, actor access.User, id int64, params DocumentUpdateParams) (document.Document, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return document.Document{}, fmt.Errorf("get document: %w", err)
	}

	updated, err := doc.Update(params.Label, params.Description, params.Language)
	if err != nil {
		return document.Document{}, err
	}

	saved, err := s.documents.Save(ctx, updated)
	if err != nil {
		return document.Document{}, fmt.Errorf("save document: %w", err)
	}
	s.commitDocumentEvent(ctx, event.TypeDocumentEdited, actor, saved.ID())

	return saved, nil
}

// ChangeType moves a document to a different type and launches that type's
// workflows. Metadata values and running instances are kept.
func (s *Document) ChangeType(ctx context.Context, actor access.User, id, typeID int64) (document.Document, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return document.Document{}, fmt.Errorf("get document: %w", err)
	}
	if _, err := s.types.Get(ctx, typeID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return document.Document{}, fmt.Errorf(
				"%w: document type %d does not exist", domain.ErrValidation, typeID,
			)
		}
		return document.Document{}, fmt.Errorf("get document type: %w", err)
	}

	saved, err := s.documents.Save(ctx, doc.WithType(typeID))
	if err != nil {
		return document.Document{}, fmt.Errorf("save document: %w", err)
	}

	if err := s.workflows.LaunchFor(ctx, actor, saved); err != nil {
		s.logger.Warn("failed to launch workflows",
			slog.Int64("document_id", saved.ID()),
			slog.String("error", err.Error()),
		)
	}
	s.commitDocumentEvent(ctx, event.TypeDocumentEdited, actor, saved.ID())

	return saved, nil
}

// Trash moves a document to the trash. Trashed documents disappear from
// smart link resolution until restored.
func (s *Document) Trash(ctx context.Context, actor access.User, id int64) (document.Document, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return document.Document{}, fmt.Errorf("get document: %w", err)
	}
	if doc.InTrash() {
		return doc, nil
	}

	saved, err := s.documents.Save(ctx, doc.Trash())
	if err != nil {
		return document.Document{}, fmt.Errorf("save document: %w", err)
	}
	s.commitDocumentEvent(ctx, event.TypeDocumentTrashed, actor, saved.ID())

	s.logger.Info("document trashed", slog.Int64("document_id", id))
	return saved, nil
}

// Restore takes a document out of the trash.
func (s *Document) Restore(ctx context.Context, actor access.User, id int64) (document.Document, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return document.Document{}, fmt.Errorf("get document: %w", err)
	}
	if !doc.InTrash() {
		return doc, nil
	}

	saved, err := s.documents.Save(ctx, doc.Restore())
	if err != nil {
		return document.Document{}, fmt.Errorf("save document: %w", err)
	}
	s.commitDocumentEvent(ctx, event.TypeDocumentRestored, actor, saved.ID())

	s.logger.Info("document restored", slog.Int64("document_id", id))
	return saved, nil
}

// Delete removes a trashed document for good, together with its versions,
// metadata values, and workflow instances. Documents must be trashed first.
func (s *Document) Delete(ctx context.Context, actor access.User, id int64) error {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if !doc.InTrash() {
		return fmt.Errorf("%w: document must be in the trash", domain.ErrConflict)
	}

	versions, err := s.versions.Find(ctx, document.WithDocumentID(id))
	if err != nil {
		return fmt.Errorf("find versions: %w", err)
	}

	if err := s.documents.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	for _, version := range versions {
		s.releaseContent(ctx, version)
	}
	s.commitDocumentEvent(ctx, event.TypeDocumentDeleted, actor, id)

	s.logger.Info("document deleted",
		slog.Int64("document_id", id),
		slog.Int("versions", len(versions)),
	)

	return nil
}

// --- versions ---

// Versions returns a document's versions, newest first.
func (s *Document) Versions(ctx context.Context, documentID int64) ([]document.Version, error) {
	if _, err := s.documents.Get(ctx, documentID); err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	versions, err := s.versions.Find(ctx,
		document.WithDocumentID(documentID),
		document.ByTimestampDesc(),
	)
	if err != nil {
		return nil, fmt.Errorf("find versions: %w", err)
	}
	return versions, nil
}

// Version returns one version by ID.
func (s *Document) Version(ctx context.Context, versionID int64) (document.Version, error) {
	version, err := s.versions.Get(ctx, versionID)
	if err != nil {
		return document.Version{}, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

// CreateVersion adds a version to a document, storing the payload when one
// is given.
func (s *Document) CreateVersion(ctx context.Context, actor access.User, params VersionCreateParams) (document.Version, error) {
	if _, err := s.documents.Get(ctx, params.DocumentID); err != nil {
		return document.Version{}, fmt.Errorf("get document: %w", err)
	}

	version, err := document.NewVersion(params.DocumentID, params.Comment)
	if err != nil {
		return document.Version{}, err
	}
	if len(params.Content) > 0 {
		version, err = s.attachContent(version, params.Content)
		if err != nil {
			return document.Version{}, err
		}
	}

	saved, err := s.versions.Save(ctx, version)
	if err != nil {
		return document.Version{}, fmt.Errorf("save version: %w", err)
	}
	s.commitDocumentEvent(ctx, event.TypeDocumentVersionCreated, actor, params.DocumentID)

	s.logger.Info("document version created",
		slog.Int64("document_id", params.DocumentID),
		slog.Int64("version_id", saved.ID()),
		slog.Int64("size", saved.Size()),
	)

	return saved, nil
}

// UploadContent attaches a payload to a version created without one.
// Re-uploading the identical payload is a no-op; different bytes conflict.
func (s *Document) UploadContent(ctx context.Context, actor access.User, versionID int64, data []byte) (document.Version, error) {
	version, err := s.versions.Get(ctx, versionID)
	if err != nil {
		return document.Version{}, fmt.Errorf("get version: %w", err)
	}
	if len(data) == 0 {
		return document.Version{}, fmt.Errorf("%w: content is empty", domain.ErrValidation)
	}

	if version.HasContent() {
		if version.Checksum() == content.Checksum(data) {
			return version, nil
		}
		return document.Version{}, fmt.Errorf(
			"%w: version already has different content", domain.ErrConflict,
		)
	}

	version, err = s.attachContent(version, data)
	if err != nil {
		return document.Version{}, err
	}

	saved, err := s.versions.Save(ctx, version)
	if err != nil {
		return document.Version{}, fmt.Errorf("save version: %w", err)
	}
	s.commitDocumentEvent(ctx, event.TypeDocumentVersionCreated, actor, version.DocumentID())

	return saved, nil
}

// Content returns a version's payload.
func (s *Document) Content(ctx context.Context, versionID int64) (VersionContent, error) {
	version, err := s.versions.Get(ctx, versionID)
	if err != nil {
		return VersionContent{}, fmt.Errorf("get version: %w", err)
	}
	if !version.HasContent() {
		return VersionContent{}, fmt.Errorf(
			"version %d has no content: %w", versionID, domain.ErrNotFound,
		)
	}

	data, err := s.content.Read(version.Checksum())
	if err != nil {
		return VersionContent{}, err
	}
	return VersionContent{version: version, data: data}, nil
}

// DeleteVersion removes a version. The stored payload is kept as long as
// another version references the same checksum.
func (s *Document) DeleteVersion(ctx context.Context, versionID int64) error {
	version, err := s.versions.Get(ctx, versionID)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}

	if err := s.versions.Delete(ctx, versionID); err != nil {
		return fmt.Errorf("delete version: %w", err)
	}
	s.releaseContent(ctx, version)

	s.logger.Info("document version deleted",
		slog.Int64("document_id", version.DocumentID()),
		slog.Int64("version_id", versionID),
	)

	return nil
}

// --- internal write operations ---

func (s *Document) attachContent(version document.Version, data []byte) (document.Version, error) {
	checksum, size, err := s.content.Write(data)
	if err != nil {
		return document.Version{}, fmt.Errorf("store content: %w", err)
	}
	mimetype, encoding := content.Detect(data)
	return version.WithContent(checksum, mimetype, encoding, size), nil
}

// releaseContent drops a version's payload once no other version points at
// the same checksum.
func (s *Document) releaseContent(ctx context.Context, version document.Version) {
	if !version.HasContent() {
		return
	}

	remaining, err := s.versions.Count(ctx, document.WithChecksum(version.Checksum()))
	if err != nil {
		s.logger.Warn("failed to count content references",
			slog.String("checksum", version.Checksum()),
			slog.String("error", err.Error()),
		)
		return
	}
	if remaining > 0 {
		return
	}
	if err := s.content.Remove(version.Checksum()); err != nil {
		s.logger.Warn("failed to remove content",
			slog.String("checksum", version.Checksum()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Document) commitDocumentEvent(ctx context.Context, t event.Type, actor access.User, documentID int64) {
	if _, err := s.events.Commit(ctx, t, actor,
		access.NewResource(access.TargetDocument, documentID),
	); err != nil {
		s.logger.Warn("failed to commit event",
			slog.String("type", t.String()),
			slog.Int64("document_id", documentID),
			slog.String("error", err.Error()),
		)
	}
}
