// Package persistence provides database storage implementations.
package persistence

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pagekeep/doclink/internal/database"
)

// Migrate brings the database schema up to date. Pending revisions are
// applied first, in order, then GORM auto migration covers the additive
// rest. Safe to run on every startup.
func Migrate(db database.Database) error {
	if err := db.GORM().AutoMigrate(&SchemaRevisionModel{}); err != nil {
		return fmt.Errorf("migrate revision table: %w", err)
	}
	if err := applyRevisions(db); err != nil {
		return err
	}
	return AutoMigrate(db)
}

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(db database.Database) error {
	return db.GORM().AutoMigrate(allModels()...)
}

// allModels returns every GORM model that AutoMigrate manages.
func allModels() []interface{} {
	return []interface{}{
		&DocumentModel{},
		&DocumentTypeModel{},
		&DocumentVersionModel{},
		&MetadataTypeModel{},
		&DocumentMetadataModel{},
		&SmartLinkModel{},
		&SmartLinkConditionModel{},
		&SmartLinkTypeModel{},
		&UserModel{},
		&AccessEntryModel{},
		&WorkflowModel{},
		&WorkflowStateModel{},
		&WorkflowTransitionModel{},
		&WorkflowTypeModel{},
		&WorkflowInstanceModel{},
		&WorkflowLogEntryModel{},
		&TriggerEventModel{},
		&StoredEventTypeModel{},
		&EventRecordModel{},
		&SchemaRevisionModel{},
	}
}

// ValidateSchema verifies every GORM model field has a corresponding column
// in the database. Returns an error listing any missing columns.
func ValidateSchema(db database.Database) error {
	gdb := db.GORM()
	migrator := gdb.Migrator()

	var missing []string
	for _, model := range allModels() {
		stmt := &gorm.Statement{DB: gdb}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parse model schema: %w", err)
		}

		columnTypes, err := migrator.ColumnTypes(model)
		if err != nil {
			return fmt.Errorf("get column types for %s: %w", stmt.Table, err)
		}

		actual := make(map[string]bool, len(columnTypes))
		for _, ct := range columnTypes {
			actual[ct.Name()] = true
		}

		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" || field.DBName == "-" {
				continue
			}
			if !actual[field.DBName] {
				missing = append(missing, stmt.Table+"."+field.DBName)
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("schema validation failed, missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
