package access

import (
	"fmt"

	"github.com/pagekeep/doclink/internal/domain"
)

// Entry grants one permission to one user. A global entry has no target
// object and applies everywhere; a scoped entry applies to a single object.
type Entry struct {
	id         int64
	userID     int64
	permission Permission
	objectKind TargetKind
	objectID   int64
}

// NewGlobalEntry grants a permission everywhere.
func NewGlobalEntry(userID int64, permission Permission) (Entry, error) {
	if userID <= 0 {
		return Entry{}, fmt.Errorf("%w: access entry requires a user", domain.ErrValidation)
	}
	if !permission.Valid() {
		return Entry{}, fmt.Errorf("%w: unknown permission %q", domain.ErrValidation, permission)
	}
	return Entry{userID: userID, permission: permission}, nil
}

// NewEntry grants a permission on a single object.
func NewEntry(userID int64, permission Permission, kind TargetKind, objectID int64) (Entry, error) {
	entry, err := NewGlobalEntry(userID, permission)
	if err != nil {
		return Entry{}, err
	}
	if _, err := ParseTargetKind(string(kind)); err != nil {
		return Entry{}, err
	}
	if objectID <= 0 {
		return Entry{}, fmt.Errorf("%w: access entry requires an object", domain.ErrValidation)
	}
	entry.objectKind = kind
	entry.objectID = objectID
	return entry, nil
}

// ReconstructEntry creates an Entry from persisted state.
func ReconstructEntry(id, userID int64, permission Permission, kind TargetKind, objectID int64) Entry {
	return Entry{
		id:         id,
		userID:     userID,
		permission: permission,
		objectKind: kind,
		objectID:   objectID,
	}
}

// ID returns the entry ID.
func (e Entry) ID() int64 { return e.id }

// UserID returns the grantee's user ID.
func (e Entry) UserID() int64 { return e.userID }

// Permission returns the granted permission.
func (e Entry) Permission() Permission { return e.permission }

// ObjectKind returns the target kind, or "" for global entries.
func (e Entry) ObjectKind() TargetKind { return e.objectKind }

// ObjectID returns the target object ID, or 0 for global entries.
func (e Entry) ObjectID() int64 { return e.objectID }

// IsGlobal returns true when the entry applies everywhere.
func (e Entry) IsGlobal() bool {
	return e.objectKind == "" && e.objectID == 0
}

// WithID returns a copy with the given ID set.
func (e Entry) WithID(id int64) Entry {
	e.id = id
	return e
}

// Covers reports whether this entry satisfies a check on the given
// resource. Global entries cover every resource.
func (e Entry) Covers(resource Resource) bool {
	if e.IsGlobal() {
		return true
	}
	return e.objectKind == resource.Kind() && e.objectID == resource.ID()
}
