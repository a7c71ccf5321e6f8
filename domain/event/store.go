package event

import (
	"context"

	"github.com/pagekeep/doclink/domain/storage"
)

// TypeStore persists stored event types.
type TypeStore interface {
	storage.Store[StoredType]

	// Get returns a stored type by row ID.
	Get(ctx context.Context, id int64) (StoredType, error)

	// GetOrCreate returns the stored row for an event type, creating it on
	// first use.
	GetOrCreate(ctx context.Context, t Type) (StoredType, error)
}

// RecordStore persists committed events.
type RecordStore interface {
	storage.Store[Record]

	// Save persists a record and returns the stored state.
	Save(ctx context.Context, r Record) (Record, error)
}
