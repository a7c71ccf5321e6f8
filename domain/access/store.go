package access

import (
	"context"

	"github.com/pagekeep/doclink/domain/storage"
)

// UserStore persists users.
type UserStore interface {
	storage.Store[User]

	// Get returns a user by ID.
	Get(ctx context.Context, id int64) (User, error)

	// GetByUsername returns a user by username.
	GetByUsername(ctx context.Context, username string) (User, error)

	// Save persists a user and returns the stored state.
	Save(ctx context.Context, u User) (User, error)

	// Delete removes a user together with their access entries.
	Delete(ctx context.Context, id int64) error
}

// EntryStore persists access entries.
type EntryStore interface {
	storage.Store[Entry]

	// Get returns an access entry by ID.
	Get(ctx context.Context, id int64) (Entry, error)

	// Save persists an access entry and returns the stored state.
	Save(ctx context.Context, e Entry) (Entry, error)

	// Delete removes an access entry.
	Delete(ctx context.Context, id int64) error
}
