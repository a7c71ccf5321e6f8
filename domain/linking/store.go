package linking

import (
	"context"

	"github.com/pagekeep/doclink/domain/storage"
)

// Store persists smart links and their document type assignments.
type Store interface {
	storage.Store[SmartLink]

	// Get returns a smart link by ID.
	Get(ctx context.Context, id int64) (SmartLink, error)

	// Save persists a smart link and returns the stored state.
	Save(ctx context.Context, link SmartLink) (SmartLink, error)

	// Delete removes a smart link together with its conditions and type
	// assignments.
	Delete(ctx context.Context, id int64) error

	// AssignType enables the link for a document type. Assigning an
	// already assigned type is a no-op.
	AssignType(ctx context.Context, linkID, typeID int64) error

	// RemoveType disables the link for a document type. Removing an
	// unassigned type is a no-op.
	RemoveType(ctx context.Context, linkID, typeID int64) error

	// TypeIDs returns the IDs of the document types the link is enabled
	// for, ascending.
	TypeIDs(ctx context.Context, linkID int64) ([]int64, error)

	// ForType returns the smart links enabled for a document type.
	ForType(ctx context.Context, typeID int64) ([]SmartLink, error)
}

// ConditionStore persists smart link conditions.
type ConditionStore interface {
	storage.Store[Condition]

	// Get returns a condition by ID.
	Get(ctx context.Context, id int64) (Condition, error)

	// Save persists a condition and returns the stored state.
	Save(ctx context.Context, cond Condition) (Condition, error)

	// Delete removes a condition.
	Delete(ctx context.Context, id int64) error
}
