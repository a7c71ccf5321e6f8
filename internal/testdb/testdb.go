// Package testdb provides the shared test database helper: an in-memory
// SQLite database carrying the full doclink schema.
package testdb

import (
	"context"
	"testing"

	"github.com/pagekeep/doclink/infrastructure/persistence"
	"github.com/pagekeep/doclink/internal/database"
)

// New creates an in-memory SQLite database with schema revisions and
// migrations applied, closed automatically when the test finishes.
// Persistence-layer tests cannot use this helper (testdb imports
// persistence); they open their own database instead.
func New(t *testing.T) database.Database {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("testdb.New: open database: %v", err)
	}
	// A second pooled connection to :memory: would see its own empty
	// database; pin the pool to one connection.
	if err := db.ConfigurePool(1, 1, 0); err != nil {
		_ = db.Close()
		t.Fatalf("testdb.New: configure pool: %v", err)
	}
	if err := persistence.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("testdb.New: migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
