package access

import (
	"fmt"

	"github.com/pagekeep/doclink/internal/domain"
)

// Permission names one guarded capability.
type Permission string

// Permission values.
const (
	PermissionDocumentView   Permission = "document_view"
	PermissionDocumentCreate Permission = "document_create"
	PermissionDocumentEdit   Permission = "document_edit"
	PermissionDocumentTrash  Permission = "document_trash"
	PermissionDocumentDelete Permission = "document_delete"

	PermissionDocumentTypeView   Permission = "document_type_view"
	PermissionDocumentTypeCreate Permission = "document_type_create"
	PermissionDocumentTypeEdit   Permission = "document_type_edit"
	PermissionDocumentTypeDelete Permission = "document_type_delete"

	PermissionSmartLinkView   Permission = "smart_link_view"
	PermissionSmartLinkCreate Permission = "smart_link_create"
	PermissionSmartLinkEdit   Permission = "smart_link_edit"
	PermissionSmartLinkDelete Permission = "smart_link_delete"

	PermissionWorkflowView       Permission = "workflow_view"
	PermissionWorkflowCreate     Permission = "workflow_create"
	PermissionWorkflowEdit       Permission = "workflow_edit"
	PermissionWorkflowDelete     Permission = "workflow_delete"
	PermissionWorkflowTransition Permission = "workflow_transition"

	PermissionMetadataTypeView   Permission = "metadata_type_view"
	PermissionMetadataTypeCreate Permission = "metadata_type_create"
	PermissionMetadataTypeEdit   Permission = "metadata_type_edit"
	PermissionMetadataTypeDelete Permission = "metadata_type_delete"

	PermissionEventView Permission = "event_view"

	PermissionACLView Permission = "acl_view"
	PermissionACLEdit Permission = "acl_edit"

	PermissionUserView Permission = "user_view"
	PermissionUserEdit Permission = "user_edit"
)

// AllPermissions returns every known permission, in a stable order.
func AllPermissions() []Permission {
	return []Permission{
		PermissionDocumentView,
		PermissionDocumentCreate,
		PermissionDocumentEdit,
		PermissionDocumentTrash,
		PermissionDocumentDelete,
		PermissionDocumentTypeView,
		PermissionDocumentTypeCreate,
		PermissionDocumentTypeEdit,
		PermissionDocumentTypeDelete,
		PermissionSmartLinkView,
		PermissionSmartLinkCreate,
		PermissionSmartLinkEdit,
		PermissionSmartLinkDelete,
		PermissionWorkflowView,
		PermissionWorkflowCreate,
		PermissionWorkflowEdit,
		PermissionWorkflowDelete,
		PermissionWorkflowTransition,
		PermissionMetadataTypeView,
		PermissionMetadataTypeCreate,
		PermissionMetadataTypeEdit,
		PermissionMetadataTypeDelete,
		PermissionEventView,
		PermissionACLView,
		PermissionACLEdit,
		PermissionUserView,
		PermissionUserEdit,
	}
}

// ParsePermission validates a permission name.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown permission %q", domain.ErrValidation, s)
	}
	return p, nil
}

// String returns the permission name.
func (p Permission) String() string {
	return string(p)
}

// Valid returns true for known permissions.
func (p Permission) Valid() bool {
	for _, known := range AllPermissions() {
		if p == known {
			return true
		}
	}
	return false
}

// TargetKind names the kind of object an access entry or check is scoped to.
type TargetKind string

// TargetKind values.
const (
	TargetDocument     TargetKind = "document"
	TargetDocumentType TargetKind = "document_type"
	TargetSmartLink    TargetKind = "smart_link"
	TargetWorkflow     TargetKind = "workflow"
	TargetMetadataType TargetKind = "metadata_type"
)

// ParseTargetKind validates a target kind name.
func ParseTargetKind(s string) (TargetKind, error) {
	switch k := TargetKind(s); k {
	case TargetDocument, TargetDocumentType, TargetSmartLink, TargetWorkflow, TargetMetadataType:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown target kind %q", domain.ErrValidation, s)
	}
}

// String returns the target kind name.
func (k TargetKind) String() string {
	return string(k)
}

// Resource identifies the object of an access check. The zero Resource
// means the check is not scoped to any object, so only global grants apply.
type Resource struct {
	kind TargetKind
	id   int64
}

// NewResource creates an object-scoped resource descriptor.
func NewResource(kind TargetKind, id int64) Resource {
	return Resource{kind: kind, id: id}
}

// Kind returns the resource's target kind.
func (r Resource) Kind() TargetKind { return r.kind }

// ID returns the resource's object ID.
func (r Resource) ID() int64 { return r.id }

// IsGlobal returns true for the zero Resource.
func (r Resource) IsGlobal() bool {
	return r.kind == "" && r.id == 0
}
