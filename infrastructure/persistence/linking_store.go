package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pagekeep/doclink/domain/linking"
	"github.com/pagekeep/doclink/internal/database"
)

// SmartLinkStore implements linking.Store using GORM.
type SmartLinkStore struct {
	database.Repository[linking.SmartLink, SmartLinkModel]
}

// NewSmartLinkStore creates a new SmartLinkStore.
func NewSmartLinkStore(db database.Database) SmartLinkStore {
	return SmartLinkStore{
		Repository: database.NewRepository[linking.SmartLink, SmartLinkModel](db, SmartLinkMapper{}, "smart link"),
	}
}

// Delete removes a smart link together with its conditions and document
// type assignments.
func (s SmartLinkStore) Delete(ctx context.Context, id int64) error {
	return database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		if err := tx.Where("smart_link_id = ?", id).Delete(&SmartLinkConditionModel{}).Error; err != nil {
			return fmt.Errorf("delete smart link conditions: %w", err)
		}
		if err := tx.Where("smart_link_id = ?", id).Delete(&SmartLinkTypeModel{}).Error; err != nil {
			return fmt.Errorf("delete smart link assignments: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&SmartLinkModel{}).Error; err != nil {
			return fmt.Errorf("delete smart link: %w", err)
		}
		return nil
	})
}

// AssignType enables the link for a document type. Assigning an already
// assigned type is a no-op.
func (s SmartLinkStore) AssignType(ctx context.Context, linkID, typeID int64) error {
	model := SmartLinkTypeModel{SmartLinkID: linkID, DocumentTypeID: typeID}
	result := s.DB(ctx).
		Where("smart_link_id = ? AND document_type_id = ?", linkID, typeID).
		FirstOrCreate(&model)
	if result.Error != nil {
		return fmt.Errorf("assign document type to smart link: %w", result.Error)
	}
	return nil
}

// RemoveType disables the link for a document type. Removing an unassigned
// type is a no-op.
func (s SmartLinkStore) RemoveType(ctx context.Context, linkID, typeID int64) error {
	result := s.DB(ctx).
		Where("smart_link_id = ? AND document_type_id = ?", linkID, typeID).
		Delete(&SmartLinkTypeModel{})
	if result.Error != nil {
		return fmt.Errorf("remove document type from smart link: %w", result.Error)
	}
	return nil
}

// TypeIDs returns the IDs of the document types the link is enabled for,
// ascending.
func (s SmartLinkStore) TypeIDs(ctx context.Context, linkID int64) ([]int64, error) {
	var ids []int64
	err := s.DB(ctx).
		Model(&SmartLinkTypeModel{}).
		Where("smart_link_id = ?", linkID).
		Order("document_type_id ASC").
		Pluck("document_type_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list smart link document types: %w", err)
	}
	return ids, nil
}

// ForType returns the smart links enabled for a document type, ordered by
// label.
func (s SmartLinkStore) ForType(ctx context.Context, typeID int64) ([]linking.SmartLink, error) {
	var models []SmartLinkModel
	err := s.DB(ctx).
		Joins("JOIN smart_link_document_types ON smart_link_document_types.smart_link_id = smart_links.id").
		Where("smart_link_document_types.document_type_id = ?", typeID).
		Order("smart_links.label ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list smart links for document type: %w", err)
	}

	links := make([]linking.SmartLink, len(models))
	for i, m := range models {
		links[i] = SmartLinkMapper{}.ToDomain(m)
	}
	return links, nil
}

// SmartLinkConditionStore implements linking.ConditionStore using GORM.
type SmartLinkConditionStore struct {
	database.Repository[linking.Condition, SmartLinkConditionModel]
}

// NewSmartLinkConditionStore creates a new SmartLinkConditionStore.
func NewSmartLinkConditionStore(db database.Database) SmartLinkConditionStore {
	return SmartLinkConditionStore{
		Repository: database.NewRepository[linking.Condition, SmartLinkConditionModel](db, SmartLinkConditionMapper{}, "smart link condition"),
	}
}

// Delete removes a condition.
func (s SmartLinkConditionStore) Delete(ctx context.Context, id int64) error {
	result := s.DB(ctx).Where("id = ?", id).Delete(&SmartLinkConditionModel{})
	if result.Error != nil {
		return fmt.Errorf("delete smart link condition: %w", result.Error)
	}
	return nil
}
