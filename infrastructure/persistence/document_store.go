package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/internal/database"
)

// DocumentStore implements document.Store using GORM.
type DocumentStore struct {
	database.Repository[document.Document, DocumentModel]
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(db database.Database) DocumentStore {
	return DocumentStore{
		Repository: database.NewRepository[document.Document, DocumentModel](db, DocumentMapper{}, "document"),
	}
}

// Delete removes a document together with its versions, metadata values,
// and workflow instances.
func (s DocumentStore) Delete(ctx context.Context, id int64) error {
	return database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		var instanceIDs []int64
		if err := tx.Model(&WorkflowInstanceModel{}).
			Where("document_id = ?", id).
			Pluck("id", &instanceIDs).Error; err != nil {
			return fmt.Errorf("collect workflow instances: %w", err)
		}
		if len(instanceIDs) > 0 {
			if err := tx.Where("workflow_instance_id IN ?", instanceIDs).
				Delete(&WorkflowLogEntryModel{}).Error; err != nil {
				return fmt.Errorf("delete workflow log entries: %w", err)
			}
		}
		if err := tx.Where("document_id = ?", id).Delete(&WorkflowInstanceModel{}).Error; err != nil {
			return fmt.Errorf("delete workflow instances: %w", err)
		}
		if err := tx.Where("document_id = ?", id).Delete(&DocumentMetadataModel{}).Error; err != nil {
			return fmt.Errorf("delete document metadata: %w", err)
		}
		if err := tx.Where("document_id = ?", id).Delete(&DocumentVersionModel{}).Error; err != nil {
			return fmt.Errorf("delete document versions: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&DocumentModel{}).Error; err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return nil
	})
}

// DocumentTypeStore implements document.TypeStore using GORM.
type DocumentTypeStore struct {
	database.Repository[document.Type, DocumentTypeModel]
}

// NewDocumentTypeStore creates a new DocumentTypeStore.
func NewDocumentTypeStore(db database.Database) DocumentTypeStore {
	return DocumentTypeStore{
		Repository: database.NewRepository[document.Type, DocumentTypeModel](db, DocumentTypeMapper{}, "document type"),
	}
}

// Delete removes a document type together with its smart link and workflow
// assignments. Documents of the type must be deleted first.
func (s DocumentTypeStore) Delete(ctx context.Context, id int64) error {
	return database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		if err := tx.Where("document_type_id = ?", id).Delete(&SmartLinkTypeModel{}).Error; err != nil {
			return fmt.Errorf("delete smart link assignments: %w", err)
		}
		if err := tx.Where("document_type_id = ?", id).Delete(&WorkflowTypeModel{}).Error; err != nil {
			return fmt.Errorf("delete workflow assignments: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&DocumentTypeModel{}).Error; err != nil {
			return fmt.Errorf("delete document type: %w", err)
		}
		return nil
	})
}

// DocumentVersionStore implements document.VersionStore using GORM.
type DocumentVersionStore struct {
	database.Repository[document.Version, DocumentVersionModel]
}

// NewDocumentVersionStore creates a new DocumentVersionStore.
func NewDocumentVersionStore(db database.Database) DocumentVersionStore {
	return DocumentVersionStore{
		Repository: database.NewRepository[document.Version, DocumentVersionModel](db, DocumentVersionMapper{}, "document version"),
	}
}

// Delete removes a document version.
func (s DocumentVersionStore) Delete(ctx context.Context, id int64) error {
	result := s.DB(ctx).Where("id = ?", id).Delete(&DocumentVersionModel{})
	if result.Error != nil {
		return fmt.Errorf("delete document version: %w", result.Error)
	}
	return nil
}

// MetadataTypeStore implements document.MetadataTypeStore using GORM.
type MetadataTypeStore struct {
	database.Repository[document.MetadataType, MetadataTypeModel]
}

// NewMetadataTypeStore creates a new MetadataTypeStore.
func NewMetadataTypeStore(db database.Database) MetadataTypeStore {
	return MetadataTypeStore{
		Repository: database.NewRepository[document.MetadataType, MetadataTypeModel](db, MetadataTypeMapper{}, "metadata type"),
	}
}

// Delete removes a metadata type together with every document value
// recorded against it.
func (s MetadataTypeStore) Delete(ctx context.Context, id int64) error {
	return database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		if err := tx.Where("metadata_type_id = ?", id).Delete(&DocumentMetadataModel{}).Error; err != nil {
			return fmt.Errorf("delete metadata values: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&MetadataTypeModel{}).Error; err != nil {
			return fmt.Errorf("delete metadata type: %w", err)
		}
		return nil
	})
}

// DocumentMetadataStore implements document.MetadataStore using GORM.
type DocumentMetadataStore struct {
	database.Repository[document.Metadata, DocumentMetadataModel]
}

// NewDocumentMetadataStore creates a new DocumentMetadataStore.
func NewDocumentMetadataStore(db database.Database) DocumentMetadataStore {
	return DocumentMetadataStore{
		Repository: database.NewRepository[document.Metadata, DocumentMetadataModel](db, DocumentMetadataMapper{}, "document metadata"),
	}
}

// Delete removes a metadata record.
func (s DocumentMetadataStore) Delete(ctx context.Context, id int64) error {
	result := s.DB(ctx).Where("id = ?", id).Delete(&DocumentMetadataModel{})
	if result.Error != nil {
		return fmt.Errorf("delete document metadata: %w", result.Error)
	}
	return nil
}

type metadataValueRow struct {
	DocumentID int64
	Name       string
	Value      string
}

// ValuesFor returns a document's metadata as a name to value map.
func (s DocumentMetadataStore) ValuesFor(ctx context.Context, documentID int64) (map[string]string, error) {
	all, err := s.ValuesForAll(ctx, []int64{documentID})
	if err != nil {
		return nil, err
	}
	return all[documentID], nil
}

// ValuesForAll returns metadata maps for several documents, keyed by
// document ID. Documents without metadata map to an empty map.
func (s DocumentMetadataStore) ValuesForAll(ctx context.Context, documentIDs []int64) (map[int64]map[string]string, error) {
	values := make(map[int64]map[string]string, len(documentIDs))
	for _, id := range documentIDs {
		values[id] = map[string]string{}
	}
	if len(documentIDs) == 0 {
		return values, nil
	}

	var rows []metadataValueRow
	err := s.DB(ctx).
		Table("document_metadata").
		Select("document_metadata.document_id AS document_id, metadata_types.name AS name, document_metadata.value AS value").
		Joins("JOIN metadata_types ON metadata_types.id = document_metadata.metadata_type_id").
		Where("document_metadata.document_id IN ?", documentIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load metadata values: %w", err)
	}

	for _, row := range rows {
		values[row.DocumentID][row.Name] = row.Value
	}
	return values, nil
}
