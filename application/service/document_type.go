package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/internal/domain"
)

// DocumentType manages document types. Types partition documents and carry
// the smart link and workflow assignments.
// Embeds Collection for Find/Get.
type DocumentType struct {
	storage.Collection[document.Type]
	types     document.TypeStore
	documents document.Store
	logger    *slog.Logger
}

// NewDocumentType creates a new DocumentType service.
func NewDocumentType(
	types document.TypeStore,
	documents document.Store,
	logger *slog.Logger,
) *DocumentType {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentType{
		Collection: storage.NewCollection[document.Type](types),
		types:      types,
		documents:  documents,
		logger:     logger,
	}
}

// Create adds a document type. Labels are unique.
func (s *DocumentType) Create(ctx context.Context, label string) (document.Type, error) {
	t, err := document.NewType(label)
	if err != nil {
		return document.Type{}, err
	}

	count, err := s.types.Count(ctx, document.WithTypeLabel(t.Label()))
	if err != nil {
		return document.Type{}, fmt.Errorf("check existing type: %w", err)
	}
	if count > 0 {
		return document.Type{}, fmt.Errorf(
			"%w: document type %q already exists", domain.ErrConflict, t.Label(),
		)
	}

	saved, err := s.types.Save(ctx, t)
	if err != nil {
		return document.Type{}, fmt.Errorf("save document type: %w", err)
	}

	s.logger.Info("document type created",
		slog.Int64("type_id", saved.ID()),
		slog.String("label", saved.Label()),
	)

	return saved, nil
}

// Rename changes a document type's label.
func (s *DocumentType) Rename(ctx context.Context, id int64, label string) (document.Type, error) {
	t, err := s.types.Get(ctx, id)
	if err != nil {
		return document.Type{}, fmt.Errorf("get document type: %w", err)
	}

	renamed, err := t.Rename(label)
	if err != nil {
		return document.Type{}, err
	}
	if renamed.Label() != t.Label() {
		count, err := s.types.Count(ctx, document.WithTypeLabel(renamed.Label()))
		if err != nil {
			return document.Type{}, fmt.Errorf("check existing type: %w", err)
		}
		if count > 0 {
			return document.Type{}, fmt.Errorf(
				"%w: document type %q already exists", domain.ErrConflict, renamed.Label(),
			)
		}
	}

	saved, err := s.types.Save(ctx, renamed)
	if err != nil {
		return document.Type{}, fmt.Errorf("save document type: %w", err)
	}
	return saved, nil
}

// Delete removes a document type and its smart link and workflow
// assignments. Types still holding documents cannot be deleted.
func (s *DocumentType) Delete(ctx context.Context, id int64) error {
	if _, err := s.types.Get(ctx, id); err != nil {
		return fmt.Errorf("get document type: %w", err)
	}

	count, err := s.documents.Count(ctx, document.WithTypeID(id))
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if count > 0 {
		return fmt.Errorf(
			"%w: document type still has %d documents", domain.ErrConflict, count,
		)
	}

	if err := s.types.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document type: %w", err)
	}

	s.logger.Info("document type deleted", slog.Int64("type_id", id))
	return nil
}
