package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/internal/database"
)

// UserStore implements access.UserStore using GORM.
type UserStore struct {
	database.Repository[access.User, UserModel]
}

// NewUserStore creates a new UserStore.
func NewUserStore(db database.Database) UserStore {
	return UserStore{
		Repository: database.NewRepository[access.User, UserModel](db, UserMapper{}, "user"),
	}
}

// GetByUsername returns a user by username.
func (s UserStore) GetByUsername(ctx context.Context, username string) (access.User, error) {
	return s.FindOne(ctx, storage.WithCondition("username", username))
}

// Delete removes a user together with their access entries.
func (s UserStore) Delete(ctx context.Context, id int64) error {
	return database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&AccessEntryModel{}).Error; err != nil {
			return fmt.Errorf("delete access entries: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&UserModel{}).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

// AccessEntryStore implements access.EntryStore using GORM.
type AccessEntryStore struct {
	database.Repository[access.Entry, AccessEntryModel]
}

// NewAccessEntryStore creates a new AccessEntryStore.
func NewAccessEntryStore(db database.Database) AccessEntryStore {
	return AccessEntryStore{
		Repository: database.NewRepository[access.Entry, AccessEntryModel](db, AccessEntryMapper{}, "access entry"),
	}
}

// Delete removes an access entry.
func (s AccessEntryStore) Delete(ctx context.Context, id int64) error {
	result := s.DB(ctx).Where("id = ?", id).Delete(&AccessEntryModel{})
	if result.Error != nil {
		return fmt.Errorf("delete access entry: %w", result.Error)
	}
	return nil
}
