package database

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"
)

func newTxTestDB(t *testing.T) Database {
	t.Helper()
	db := newSQLiteDB(t)
	ctx := context.Background()
	if err := db.Session(ctx).Exec("CREATE TABLE entries (id INTEGER PRIMARY KEY, label TEXT)").Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func countEntries(t *testing.T, db Database) int64 {
	t.Helper()
	var count int64
	if err := db.Session(context.Background()).Raw("SELECT COUNT(*) FROM entries").Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	db := newTxTestDB(t)

	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO entries (label) VALUES (?)", "a").Error
	})
	if err != nil {
		t.Fatalf("WithTransaction: %v", err)
	}

	if got := countEntries(t, db); got != 1 {
		t.Errorf("count after commit = %d, want 1", got)
	}
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := newTxTestDB(t)
	boom := errors.New("boom")

	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO entries (label) VALUES (?)", "a").Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if got := countEntries(t, db); got != 0 {
		t.Errorf("count after failed transaction = %d, want 0", got)
	}
}

func TestWithTransaction_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	db := newTxTestDB(t)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected the panic to propagate")
			}
		}()
		_ = WithTransaction(ctx, db, func(tx *gorm.DB) error {
			if err := tx.Exec("INSERT INTO entries (label) VALUES (?)", "a").Error; err != nil {
				return err
			}
			panic("mid-transaction failure")
		})
	}()

	if got := countEntries(t, db); got != 0 {
		t.Errorf("count after panic = %d, want 0", got)
	}
}
