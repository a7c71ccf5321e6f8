package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/pagekeep/doclink/internal/database"
)

// revision is a one-time schema or data change that GORM auto migration
// cannot express. Revisions run in list order, each inside its own
// transaction, and are recorded so they never run twice. Every revision
// must tolerate a fresh database where the tables it touches do not exist
// yet; auto migration creates those correctly from the start.
type revision struct {
	name  string
	apply func(tx *gorm.DB) error
}

func revisions() []revision {
	return []revision{
		{
			name: "0001_document_language_default",
			apply: func(tx *gorm.DB) error {
				if !tx.Migrator().HasTable(&DocumentModel{}) {
					return nil
				}
				return tx.Exec(
					`UPDATE documents SET language = 'eng' WHERE language IS NULL OR language = ''`,
				).Error
			},
		},
		{
			name: "0002_trashed_deleted_datetime",
			apply: func(tx *gorm.DB) error {
				if !tx.Migrator().HasTable(&DocumentModel{}) ||
					!tx.Migrator().HasColumn(&DocumentModel{}, "deleted_date_time") {
					return nil
				}
				// Rows trashed before the timestamp column existed fall
				// back to their creation time.
				return tx.Exec(
					`UPDATE documents SET deleted_date_time = date_added WHERE in_trash AND deleted_date_time IS NULL`,
				).Error
			},
		},
		{
			name: "0003_condition_inclusion_default",
			apply: func(tx *gorm.DB) error {
				if !tx.Migrator().HasTable(&SmartLinkConditionModel{}) {
					return nil
				}
				return tx.Exec(
					`UPDATE smart_link_conditions SET inclusion = 'and' WHERE inclusion IS NULL OR inclusion = ''`,
				).Error
			},
		},
	}
}

// applyRevisions runs every pending revision in order. The schema_revisions
// table must already exist.
func applyRevisions(db database.Database) error {
	applied, err := appliedRevisions(db)
	if err != nil {
		return err
	}

	for _, rev := range revisions() {
		if applied[rev.name] {
			continue
		}
		slog.Info("applying schema revision", "revision", rev.name)
		err := database.WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
			if err := rev.apply(tx); err != nil {
				return err
			}
			record := SchemaRevisionModel{Name: rev.name, AppliedAt: time.Now().UTC()}
			return tx.Create(&record).Error
		})
		if err != nil {
			return fmt.Errorf("apply schema revision %s: %w", rev.name, err)
		}
	}
	return nil
}

// appliedRevisions returns the names of revisions already recorded.
func appliedRevisions(db database.Database) (map[string]bool, error) {
	var names []string
	err := db.GORM().Model(&SchemaRevisionModel{}).Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("load applied revisions: %w", err)
	}

	applied := make(map[string]bool, len(names))
	for _, name := range names {
		applied[name] = true
	}
	return applied, nil
}
