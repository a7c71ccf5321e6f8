package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pagekeep/doclink/domain/workflow"
	"github.com/pagekeep/doclink/internal/database"
)

// WorkflowStore implements workflow.Store using GORM.
type WorkflowStore struct {
	database.Repository[workflow.Workflow, WorkflowModel]
}

// NewWorkflowStore creates a new WorkflowStore.
func NewWorkflowStore(db database.Database) WorkflowStore {
	return WorkflowStore{
		Repository: database.NewRepository[workflow.Workflow, WorkflowModel](db, WorkflowMapper{}, "workflow"),
	}
}

// Delete removes a workflow together with its states, transitions,
// triggers, instances, log entries, and document type assignments.
func (s WorkflowStore) Delete(ctx context.Context, id int64) error {
	return database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		var transitionIDs []int64
		if err := tx.Model(&WorkflowTransitionModel{}).
			Where("workflow_id = ?", id).
			Pluck("id", &transitionIDs).Error; err != nil {
			return fmt.Errorf("collect transitions: %w", err)
		}
		if len(transitionIDs) > 0 {
			if err := tx.Where("transition_id IN ?", transitionIDs).
				Delete(&TriggerEventModel{}).Error; err != nil {
				return fmt.Errorf("delete transition triggers: %w", err)
			}
		}

		var instanceIDs []int64
		if err := tx.Model(&WorkflowInstanceModel{}).
			Where("workflow_id = ?", id).
			Pluck("id", &instanceIDs).Error; err != nil {
			return fmt.Errorf("collect instances: %w", err)
		}
		if len(instanceIDs) > 0 {
			if err := tx.Where("workflow_instance_id IN ?", instanceIDs).
				Delete(&WorkflowLogEntryModel{}).Error; err != nil {
				return fmt.Errorf("delete instance log entries: %w", err)
			}
		}

		if err := tx.Where("workflow_id = ?", id).Delete(&WorkflowInstanceModel{}).Error; err != nil {
			return fmt.Errorf("delete instances: %w", err)
		}
		if err := tx.Where("workflow_id = ?", id).Delete(&WorkflowTransitionModel{}).Error; err != nil {
			return fmt.Errorf("delete transitions: %w", err)
		}
		if err := tx.Where("workflow_id = ?", id).Delete(&WorkflowStateModel{}).Error; err != nil {
			return fmt.Errorf("delete states: %w", err)
		}
		if err := tx.Where("workflow_id = ?", id).Delete(&WorkflowTypeModel{}).Error; err != nil {
			return fmt.Errorf("delete workflow assignments: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&WorkflowModel{}).Error; err != nil {
			return fmt.Errorf("delete workflow: %w", err)
		}
		return nil
	})
}

// AssignType enables the workflow for a document type. Assigning an
// already assigned type is a no-op.
func (s WorkflowStore) AssignType(ctx context.Context, workflowID, typeID int64) error {
	model := WorkflowTypeModel{WorkflowID: workflowID, DocumentTypeID: typeID}
	result := s.DB(ctx).
		Where("workflow_id = ? AND document_type_id = ?", workflowID, typeID).
		FirstOrCreate(&model)
	if result.Error != nil {
		return fmt.Errorf("assign document type to workflow: %w", result.Error)
	}
	return nil
}

// RemoveType disables the workflow for a document type. Removing an
// unassigned type is a no-op.
func (s WorkflowStore) RemoveType(ctx context.Context, workflowID, typeID int64) error {
	result := s.DB(ctx).
		Where("workflow_id = ? AND document_type_id = ?", workflowID, typeID).
		Delete(&WorkflowTypeModel{})
	if result.Error != nil {
		return fmt.Errorf("remove document type from workflow: %w", result.Error)
	}
	return nil
}

// TypeIDs returns the IDs of the document types the workflow is enabled
// for, ascending.
func (s WorkflowStore) TypeIDs(ctx context.Context, workflowID int64) ([]int64, error) {
	var ids []int64
	err := s.DB(ctx).
		Model(&WorkflowTypeModel{}).
		Where("workflow_id = ?", workflowID).
		Order("document_type_id ASC").
		Pluck("document_type_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list workflow document types: %w", err)
	}
	return ids, nil
}

// ForType returns the workflows enabled for a document type, ordered by
// label.
func (s WorkflowStore) ForType(ctx context.Context, typeID int64) ([]workflow.Workflow, error) {
	var models []WorkflowModel
	err := s.DB(ctx).
		Joins("JOIN workflow_document_types ON workflow_document_types.workflow_id = workflows.id").
		Where("workflow_document_types.document_type_id = ?", typeID).
		Order("workflows.label ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list workflows for document type: %w", err)
	}

	workflows := make([]workflow.Workflow, len(models))
	for i, m := range models {
		workflows[i] = WorkflowMapper{}.ToDomain(m)
	}
	return workflows, nil
}

// WorkflowStateStore implements workflow.StateStore using GORM.
type WorkflowStateStore struct {
	database.Repository[workflow.State, WorkflowStateModel]
}

// NewWorkflowStateStore creates a new WorkflowStateStore.
func NewWorkflowStateStore(db database.Database) WorkflowStateStore {
	return WorkflowStateStore{
		Repository: database.NewRepository[workflow.State, WorkflowStateModel](db, WorkflowStateMapper{}, "workflow state"),
	}
}

// Delete removes a state.
func (s WorkflowStateStore) Delete(ctx context.Context, id int64) error {
	result := s.DB(ctx).Where("id = ?", id).Delete(&WorkflowStateModel{})
	if result.Error != nil {
		return fmt.Errorf("delete workflow state: %w", result.Error)
	}
	return nil
}

// WorkflowTransitionStore implements workflow.TransitionStore using GORM.
type WorkflowTransitionStore struct {
	database.Repository[workflow.Transition, WorkflowTransitionModel]
}

// NewWorkflowTransitionStore creates a new WorkflowTransitionStore.
func NewWorkflowTransitionStore(db database.Database) WorkflowTransitionStore {
	return WorkflowTransitionStore{
		Repository: database.NewRepository[workflow.Transition, WorkflowTransitionModel](db, WorkflowTransitionMapper{}, "workflow transition"),
	}
}

// Delete removes a transition together with its event triggers.
func (s WorkflowTransitionStore) Delete(ctx context.Context, id int64) error {
	return database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		if err := tx.Where("transition_id = ?", id).Delete(&TriggerEventModel{}).Error; err != nil {
			return fmt.Errorf("delete transition triggers: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&WorkflowTransitionModel{}).Error; err != nil {
			return fmt.Errorf("delete workflow transition: %w", err)
		}
		return nil
	})
}

// WorkflowInstanceStore implements workflow.InstanceStore using GORM.
type WorkflowInstanceStore struct {
	database.Repository[workflow.Instance, WorkflowInstanceModel]
}

// NewWorkflowInstanceStore creates a new WorkflowInstanceStore.
func NewWorkflowInstanceStore(db database.Database) WorkflowInstanceStore {
	return WorkflowInstanceStore{
		Repository: database.NewRepository[workflow.Instance, WorkflowInstanceModel](db, WorkflowInstanceMapper{}, "workflow instance"),
	}
}

// Delete removes an instance together with its log entries.
func (s WorkflowInstanceStore) Delete(ctx context.Context, id int64) error {
	return database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		if err := tx.Where("workflow_instance_id = ?", id).Delete(&WorkflowLogEntryModel{}).Error; err != nil {
			return fmt.Errorf("delete instance log entries: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&WorkflowInstanceModel{}).Error; err != nil {
			return fmt.Errorf("delete workflow instance: %w", err)
		}
		return nil
	})
}

// WorkflowLogStore implements workflow.LogStore using GORM.
type WorkflowLogStore struct {
	database.Repository[workflow.LogEntry, WorkflowLogEntryModel]
}

// NewWorkflowLogStore creates a new WorkflowLogStore.
func NewWorkflowLogStore(db database.Database) WorkflowLogStore {
	return WorkflowLogStore{
		Repository: database.NewRepository[workflow.LogEntry, WorkflowLogEntryModel](db, WorkflowLogEntryMapper{}, "workflow log entry"),
	}
}

// WorkflowTriggerStore implements workflow.TriggerStore using GORM.
type WorkflowTriggerStore struct {
	database.Repository[workflow.TriggerEvent, TriggerEventModel]
}

// NewWorkflowTriggerStore creates a new WorkflowTriggerStore.
func NewWorkflowTriggerStore(db database.Database) WorkflowTriggerStore {
	return WorkflowTriggerStore{
		Repository: database.NewRepository[workflow.TriggerEvent, TriggerEventModel](db, TriggerEventMapper{}, "workflow trigger"),
	}
}

// Delete removes a trigger.
func (s WorkflowTriggerStore) Delete(ctx context.Context, id int64) error {
	result := s.DB(ctx).Where("id = ?", id).Delete(&TriggerEventModel{})
	if result.Error != nil {
		return fmt.Errorf("delete workflow trigger: %w", result.Error)
	}
	return nil
}
