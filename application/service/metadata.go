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
	"github.com/pagekeep/doclink/internal/database"
	"github.com/pagekeep/doclink/internal/domain"
)

// MetadataTypeParams configures creating a metadata type.
type MetadataTypeParams struct {
	Name  string
	Label string
}

// MetadataEntry pairs a stored metadata value with its type.
type MetadataEntry struct {
	record       document.Metadata
	metadataType document.MetadataType
}

// Record returns the stored value record.
func (e MetadataEntry) Record() document.Metadata { return e.record }

// Type returns the value's metadata type.
func (e MetadataEntry) Type() document.MetadataType { return e.metadataType }

// Metadata manages metadata types and per-document values. Values are the
// fields smart link conditions reference as "metadata.<name>".
// Embeds Collection for Find/Get over metadata types.
type Metadata struct {
	storage.Collection[document.MetadataType]
	types     document.MetadataTypeStore
	values    document.MetadataStore
	documents document.Store
	events    *Event
	logger    *slog.Logger
}

// NewMetadata creates a new Metadata service.
func NewMetadata(
	types document.MetadataTypeStore,
	values document.MetadataStore,
	documents document.Store,
	events *Event,
	logger *slog.Logger,
) *Metadata {
	if logger == nil {
		logger = slog.Default()
	}
	return &Metadata{
		Collection: storage.NewCollection[document.MetadataType](types),
		types:      types,
		values:     values,
		documents:  documents,
		events:     events,
		logger:     logger,
	}
}

// CreateType adds a metadata type. Names are unique machine identifiers.
func (s *Metadata) CreateType(ctx context.Context, params MetadataTypeParams) (document.MetadataType, error) {
	t, err := document.NewMetadataType(params.Name, params.Label)
	if err != nil {
		return document.MetadataType{}, err
	}

	count, err := s.types.Count(ctx, document.WithMetadataTypeName(t.Name()))
	if err != nil {
		return document.MetadataType{}, fmt.Errorf("check existing type: %w", err)
	}
	if count > 0 {
		return document.MetadataType{}, fmt.Errorf(
			"%w: metadata type %q already exists", domain.ErrConflict, t.Name(),
		)
	}

	saved, err := s.types.Save(ctx, t)
	if err != nil {
		return document.MetadataType{}, fmt.Errorf("save metadata type: %w", err)
	}

	s.logger.Info("metadata type created",
		slog.Int64("metadata_type_id", saved.ID()),
		slog.String("name", saved.Name()),
	)

	return saved, nil
}

// RenameType changes a metadata type's display label. The machine name is
// immutable; conditions reference values by it.
func (s *Metadata) RenameType(ctx context.Context, id int64, label string) (document.MetadataType, error) {
	t, err := s.types.Get(ctx, id)
	if err != nil {
		return document.MetadataType{}, fmt.Errorf("get metadata type: %w", err)
	}

	saved, err := s.types.Save(ctx, t.Rename(label))
	if err != nil {
		return document.MetadataType{}, fmt.Errorf("save metadata type: %w", err)
	}
	return saved, nil
}

// DeleteType removes a metadata type and every document value of it.
func (s *Metadata) DeleteType(ctx context.Context, id int64) error {
	if _, err := s.types.Get(ctx, id); err != nil {
		return fmt.Errorf("get metadata type: %w", err)
	}

	values, err := s.values.Count(ctx, document.WithMetadataTypeID(id))
	if err != nil {
		return fmt.Errorf("count values: %w", err)
	}

	if err := s.types.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete metadata type: %w", err)
	}

	s.logger.Info("metadata type deleted",
		slog.Int64("metadata_type_id", id),
		slog.Int64("values_removed", values),
	)

	return nil
}

// SetValue sets a document's value for a metadata type, replacing any
// existing one.
func (s *Metadata) SetValue(ctx context.Context, actor access.User, documentID, typeID int64, value string) (document.Metadata, error) {
	if _, err := s.documents.Get(ctx, documentID); err != nil {
		return document.Metadata{}, fmt.Errorf("get document: %w", err)
	}
	if _, err := s.types.Get(ctx, typeID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return document.Metadata{}, fmt.Errorf(
				"%w: metadata type %d does not exist", domain.ErrValidation, typeID,
			)
		}
		return document.Metadata{}, fmt.Errorf("get metadata type: %w", err)
	}

	record, err := s.values.FindOne(ctx,
		document.WithDocumentID(documentID),
		document.WithMetadataTypeID(typeID),
	)
	switch {
	case err == nil:
		record = record.WithValue(value)
	case errors.Is(err, database.ErrNotFound):
		record, err = document.NewMetadata(documentID, typeID, value)
		if err != nil {
			return document.Metadata{}, err
		}
	default:
		return document.Metadata{}, fmt.Errorf("find existing value: %w", err)
	}

	saved, err := s.values.Save(ctx, record)
	if err != nil {
		return document.Metadata{}, fmt.Errorf("save value: %w", err)
	}
	s.commitEditedEvent(ctx, actor, documentID)

	return saved, nil
}

// RemoveValue drops a document's value for a metadata type. Removing an
// absent value is a no-op.
func (s *Metadata) RemoveValue(ctx context.Context, actor access.User, documentID, typeID int64) error {
	if _, err := s.documents.Get(ctx, documentID); err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	record, err := s.values.FindOne(ctx,
		document.WithDocumentID(documentID),
		document.WithMetadataTypeID(typeID),
	)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find value: %w", err)
	}

	if err := s.values.Delete(ctx, record.ID()); err != nil {
		return fmt.Errorf("delete value: %w", err)
	}
	s.commitEditedEvent(ctx, actor, documentID)

	return nil
}

// For returns a document's metadata values paired with their types.
func (s *Metadata) For(ctx context.Context, documentID int64) ([]MetadataEntry, error) {
	if _, err := s.documents.Get(ctx, documentID); err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	records, err := s.values.Find(ctx, document.WithDocumentID(documentID))
	if err != nil {
		return nil, fmt.Errorf("find values: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	typeIDs := make([]int64, 0, len(records))
	for _, record := range records {
		typeIDs = append(typeIDs, record.TypeID())
	}
	types, err := s.types.Find(ctx, storage.WithIDIn(typeIDs))
	if err != nil {
		return nil, fmt.Errorf("find types: %w", err)
	}
	byID := make(map[int64]document.MetadataType, len(types))
	for _, t := range types {
		byID[t.ID()] = t
	}

	entries := make([]MetadataEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, MetadataEntry{
			record:       record,
			metadataType: byID[record.TypeID()],
		})
	}
	return entries, nil
}

// ValuesFor returns a document's metadata as a name to value map, the form
// the condition evaluator consumes.
func (s *Metadata) ValuesFor(ctx context.Context, documentID int64) (map[string]string, error) {
	values, err := s.values.ValuesFor(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load metadata values: %w", err)
	}
	return values, nil
}

func (s *Metadata) commitEditedEvent(ctx context.Context, actor access.User, documentID int64) {
	if _, err := s.events.Commit(ctx, event.TypeDocumentEdited, actor,
		access.NewResource(access.TargetDocument, documentID),
	); err != nil {
		s.logger.Warn("failed to commit event",
			slog.Int64("document_id", documentID),
			slog.String("error", err.Error()),
		)
	}
}
