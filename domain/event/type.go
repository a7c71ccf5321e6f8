// Package event defines the audit event vocabulary and committed event
// records. Event types are registered in code; a row is stored for a type
// the first time an event of that type is committed, and workflow triggers
// reference those stored rows.
package event

import (
	"fmt"
	"strings"

	"github.com/pagekeep/doclink/internal/domain"
)

// Type identifies one kind of auditable action as "namespace.name".
type Type string

// Type values.
const (
	TypeDocumentCreated        Type = "documents.created"
	TypeDocumentEdited         Type = "documents.edited"
	TypeDocumentTrashed        Type = "documents.trashed"
	TypeDocumentRestored       Type = "documents.restored"
	TypeDocumentDeleted        Type = "documents.deleted"
	TypeDocumentVersionCreated Type = "documents.version_created"

	TypeSmartLinkCreated Type = "smart_links.created"
	TypeSmartLinkEdited  Type = "smart_links.edited"
	TypeSmartLinkDeleted Type = "smart_links.deleted"

	TypeWorkflowInstanceLaunched   Type = "workflows.instance_launched"
	TypeWorkflowTransitionExecuted Type = "workflows.transition_executed"
)

// AllTypes returns every registered event type, in a stable order.
func AllTypes() []Type {
	return []Type{
		TypeDocumentCreated,
		TypeDocumentEdited,
		TypeDocumentTrashed,
		TypeDocumentRestored,
		TypeDocumentDeleted,
		TypeDocumentVersionCreated,
		TypeSmartLinkCreated,
		TypeSmartLinkEdited,
		TypeSmartLinkDeleted,
		TypeWorkflowInstanceLaunched,
		TypeWorkflowTransitionExecuted,
	}
}

// ParseType validates an event type name.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown event type %q", domain.ErrValidation, s)
	}
	return t, nil
}

// String returns the full type name.
func (t Type) String() string {
	return string(t)
}

// Valid returns true for registered event types.
func (t Type) Valid() bool {
	for _, known := range AllTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Namespace returns the part before the dot.
func (t Type) Namespace() string {
	name, _, _ := strings.Cut(string(t), ".")
	return name
}

// Label returns a human-readable description of the event type.
func (t Type) Label() string {
	switch t {
	case TypeDocumentCreated:
		return "Document created"
	case TypeDocumentEdited:
		return "Document edited"
	case TypeDocumentTrashed:
		return "Document moved to trash"
	case TypeDocumentRestored:
		return "Document restored from trash"
	case TypeDocumentDeleted:
		return "Document deleted"
	case TypeDocumentVersionCreated:
		return "Document version created"
	case TypeSmartLinkCreated:
		return "Smart link created"
	case TypeSmartLinkEdited:
		return "Smart link edited"
	case TypeSmartLinkDeleted:
		return "Smart link deleted"
	case TypeWorkflowInstanceLaunched:
		return "Workflow instance launched"
	case TypeWorkflowTransitionExecuted:
		return "Workflow transition executed"
	default:
		return string(t)
	}
}

// StoredType is the persisted row for an event type, created lazily the
// first time the type is used. Workflow triggers reference stored types by
// row ID.
type StoredType struct {
	id   int64
	name Type
}

// NewStoredType creates the stored row for a registered event type.
func NewStoredType(t Type) (StoredType, error) {
	if !t.Valid() {
		return StoredType{}, fmt.Errorf("%w: unknown event type %q", domain.ErrValidation, t)
	}
	return StoredType{name: t}, nil
}

// ReconstructStoredType creates a StoredType from persisted state.
func ReconstructStoredType(id int64, name string) StoredType {
	return StoredType{id: id, name: Type(name)}
}

// ID returns the stored row ID.
func (s StoredType) ID() int64 { return s.id }

// Name returns the event type.
func (s StoredType) Name() Type { return s.name }

// WithID returns a copy with the given ID set.
func (s StoredType) WithID(id int64) StoredType {
	s.id = id
	return s
}
