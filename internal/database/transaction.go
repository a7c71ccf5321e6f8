package database

import (
	"context"

	"gorm.io/gorm"
)

// WithTransaction runs fn inside one database transaction. The transaction
// commits when fn returns nil and rolls back when fn returns an error or
// panics. fn's error is returned unwrapped so domain sentinels survive
// errors.Is checks at the API layer.
func WithTransaction(ctx context.Context, db Database, fn func(tx *gorm.DB) error) error {
	return db.Session(ctx).Transaction(fn)
}
