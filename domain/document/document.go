// Package document defines the document aggregate: documents, their types,
// stored versions, and metadata.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pagekeep/doclink/internal/domain"
)

// Field limits enforced at construction time. They match the persisted
// column widths.
const (
	MaxLabelLength    = 255
	MaxLanguageLength = 8
)

// DefaultLanguage is applied when a document is created without one.
const DefaultLanguage = "eng"

// Document represents a single document in the system. Content lives in
// versions; the document itself carries identity and descriptive fields.
type Document struct {
	id          int64
	uuid        uuid.UUID
	typeID      int64
	label       string
	description string
	language    string
	inTrash     bool
	deletedAt   *time.Time
	dateAdded   time.Time
}

// NewDocument creates a Document of the given type.
// The language defaults to DefaultLanguage when empty.
func NewDocument(typeID int64, label, description, language string) (Document, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Document{}, fmt.Errorf("%w: document label is required", domain.ErrValidation)
	}
	if len(label) > MaxLabelLength {
		return Document{}, fmt.Errorf(
			"%w: document label exceeds %d characters", domain.ErrValidation, MaxLabelLength,
		)
	}
	if typeID <= 0 {
		return Document{}, fmt.Errorf("%w: document type is required", domain.ErrValidation)
	}
	if language == "" {
		language = DefaultLanguage
	}
	if len(language) > MaxLanguageLength {
		return Document{}, fmt.Errorf(
			"%w: language exceeds %d characters", domain.ErrValidation, MaxLanguageLength,
		)
	}

	return Document{
		uuid:        uuid.New(),
		typeID:      typeID,
		label:       label,
		description: description,
		language:    language,
		dateAdded:   time.Now().UTC(),
	}, nil
}

// ReconstructDocument creates a Document from persisted state.
func ReconstructDocument(
	id int64,
	documentUUID uuid.UUID,
	typeID int64,
	label, description, language string,
	inTrash bool,
	deletedAt *time.Time,
	dateAdded time.Time,
) Document {
	return Document{
		id:          id,
		uuid:        documentUUID,
		typeID:      typeID,
		label:       label,
		description: description,
		language:    language,
		inTrash:     inTrash,
		deletedAt:   deletedAt,
		dateAdded:   dateAdded,
	}
}

// ID returns the document ID.
func (d Document) ID() int64 { return d.id }

// UUID returns the document's universally unique identifier.
func (d Document) UUID() uuid.UUID { return d.uuid }

// TypeID returns the ID of the document's type.
func (d Document) TypeID() int64 { return d.typeID }

// Label returns the document label.
func (d Document) Label() string { return d.label }

// Description returns the document description.
func (d Document) Description() string { return d.description }

// Language returns the dominant language code.
func (d Document) Language() string { return d.language }

// InTrash returns true when the document has been moved to the trash.
func (d Document) InTrash() bool { return d.inTrash }

// DeletedAt returns when the document was moved to the trash, or nil.
func (d Document) DeletedAt() *time.Time {
	if d.deletedAt == nil {
		return nil
	}
	t := *d.deletedAt
	return &t
}

// DateAdded returns when the document was added to the system.
func (d Document) DateAdded() time.Time { return d.dateAdded }

// WithID returns a copy with the given ID set.
func (d Document) WithID(id int64) Document {
	d.id = id
	return d
}

// Update returns a copy with the descriptive fields replaced, applying the
// same validation as NewDocument. An empty language keeps the current one.
func (d Document) Update(label, description, language string) (Document, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Document{}, fmt.Errorf("%w: document label is required", domain.ErrValidation)
	}
	if len(label) > MaxLabelLength {
		return Document{}, fmt.Errorf(
			"%w: document label exceeds %d characters", domain.ErrValidation, MaxLabelLength,
		)
	}
	if language == "" {
		language = d.language
	}
	if len(language) > MaxLanguageLength {
		return Document{}, fmt.Errorf(
			"%w: language exceeds %d characters", domain.ErrValidation, MaxLanguageLength,
		)
	}
	d.label = label
	d.description = description
	d.language = language
	return d, nil
}

// WithType returns a copy assigned to a different document type.
func (d Document) WithType(typeID int64) Document {
	d.typeID = typeID
	return d
}

// Trash returns a copy marked as trashed. Trashing an already trashed
// document is a no-op.
func (d Document) Trash() Document {
	if d.inTrash {
		return d
	}
	now := time.Now().UTC()
	d.inTrash = true
	d.deletedAt = &now
	return d
}

// Restore returns a copy taken out of the trash.
func (d Document) Restore() Document {
	d.inTrash = false
	d.deletedAt = nil
	return d
}
