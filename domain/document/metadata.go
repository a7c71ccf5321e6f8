package document

import (
	"fmt"
	"strings"

	"github.com/pagekeep/doclink/internal/domain"
)

// MaxMetadataNameLength bounds a metadata type's machine name.
const MaxMetadataNameLength = 64

// MetadataType declares a named metadata field that documents may carry.
// The name is the machine identifier used in field references; the label is
// for display.
type MetadataType struct {
	id    int64
	name  string
	label string
}

// NewMetadataType creates a metadata type. The name must be a single
// identifier without whitespace or dots. An empty label defaults to the name.
func NewMetadataType(name, label string) (MetadataType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return MetadataType{}, fmt.Errorf("%w: metadata type name is required", domain.ErrValidation)
	}
	if len(name) > MaxMetadataNameLength {
		return MetadataType{}, fmt.Errorf(
			"%w: metadata type name exceeds %d characters", domain.ErrValidation, MaxMetadataNameLength,
		)
	}
	if strings.ContainsAny(name, " \t.") {
		return MetadataType{}, fmt.Errorf(
			"%w: metadata type name %q must not contain spaces or dots", domain.ErrValidation, name,
		)
	}
	if label == "" {
		label = name
	}
	return MetadataType{name: name, label: label}, nil
}

// ReconstructMetadataType creates a MetadataType from persisted state.
func ReconstructMetadataType(id int64, name, label string) MetadataType {
	return MetadataType{id: id, name: name, label: label}
}

// ID returns the metadata type ID.
func (t MetadataType) ID() int64 { return t.id }

// Name returns the machine name.
func (t MetadataType) Name() string { return t.name }

// Label returns the display label.
func (t MetadataType) Label() string { return t.label }

// WithID returns a copy with the given ID set.
func (t MetadataType) WithID(id int64) MetadataType {
	t.id = id
	return t
}

// Rename returns a copy with a new label. The machine name is immutable
// because stored field references depend on it.
func (t MetadataType) Rename(label string) MetadataType {
	if label != "" {
		t.label = label
	}
	return t
}

// Metadata is one metadata value attached to a document. A document holds
// at most one value per metadata type.
type Metadata struct {
	id         int64
	documentID int64
	typeID     int64
	value      string
}

// NewMetadata attaches a metadata value to a document.
func NewMetadata(documentID, typeID int64, value string) (Metadata, error) {
	if documentID <= 0 {
		return Metadata{}, fmt.Errorf("%w: metadata requires a document", domain.ErrValidation)
	}
	if typeID <= 0 {
		return Metadata{}, fmt.Errorf("%w: metadata requires a metadata type", domain.ErrValidation)
	}
	return Metadata{documentID: documentID, typeID: typeID, value: value}, nil
}

// ReconstructMetadata creates a Metadata from persisted state.
func ReconstructMetadata(id, documentID, typeID int64, value string) Metadata {
	return Metadata{id: id, documentID: documentID, typeID: typeID, value: value}
}

// ID returns the metadata record ID.
func (m Metadata) ID() int64 { return m.id }

// DocumentID returns the owning document's ID.
func (m Metadata) DocumentID() int64 { return m.documentID }

// TypeID returns the metadata type's ID.
func (m Metadata) TypeID() int64 { return m.typeID }

// Value returns the metadata value.
func (m Metadata) Value() string { return m.value }

// WithID returns a copy with the given ID set.
func (m Metadata) WithID(id int64) Metadata {
	m.id = id
	return m
}

// WithValue returns a copy with the value replaced.
func (m Metadata) WithValue(value string) Metadata {
	m.value = value
	return m
}
