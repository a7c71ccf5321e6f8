package document

import (
	"fmt"
	"strings"

	"github.com/pagekeep/doclink/internal/domain"
)

// MaxTypeLabelLength bounds a document type label.
const MaxTypeLabelLength = 32

// Type categorizes documents. Smart links and workflows are enabled per
// document type.
type Type struct {
	id    int64
	label string
}

// NewType creates a document type with the given label.
func NewType(label string) (Type, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Type{}, fmt.Errorf("%w: document type label is required", domain.ErrValidation)
	}
	if len(label) > MaxTypeLabelLength {
		return Type{}, fmt.Errorf(
			"%w: document type label exceeds %d characters", domain.ErrValidation, MaxTypeLabelLength,
		)
	}
	return Type{label: label}, nil
}

// ReconstructType creates a Type from persisted state.
func ReconstructType(id int64, label string) Type {
	return Type{id: id, label: label}
}

// ID returns the document type ID.
func (t Type) ID() int64 { return t.id }

// Label returns the document type label.
func (t Type) Label() string { return t.label }

// WithID returns a copy with the given ID set.
func (t Type) WithID(id int64) Type {
	t.id = id
	return t
}

// Rename returns a copy with a new label, applying the same validation as
// NewType.
func (t Type) Rename(label string) (Type, error) {
	renamed, err := NewType(label)
	if err != nil {
		return Type{}, err
	}
	renamed.id = t.id
	return renamed, nil
}
