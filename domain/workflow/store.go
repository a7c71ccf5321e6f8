package workflow

import (
	"context"

	"github.com/pagekeep/doclink/domain/storage"
)

// Store persists workflows and their document type assignments.
type Store interface {
	storage.Store[Workflow]

	// Get returns a workflow by ID.
	Get(ctx context.Context, id int64) (Workflow, error)

	// Save persists a workflow and returns the stored state.
	Save(ctx context.Context, w Workflow) (Workflow, error)

	// Delete removes a workflow together with its states, transitions,
	// triggers, instances, and type assignments.
	Delete(ctx context.Context, id int64) error

	// AssignType enables the workflow for a document type. Assigning an
	// already assigned type is a no-op.
	AssignType(ctx context.Context, workflowID, typeID int64) error

	// RemoveType disables the workflow for a document type. Removing an
	// unassigned type is a no-op.
	RemoveType(ctx context.Context, workflowID, typeID int64) error

	// TypeIDs returns the IDs of the document types the workflow is
	// enabled for, ascending.
	TypeIDs(ctx context.Context, workflowID int64) ([]int64, error)

	// ForType returns the workflows enabled for a document type.
	ForType(ctx context.Context, typeID int64) ([]Workflow, error)
}

// StateStore persists workflow states.
type StateStore interface {
	storage.Store[State]

	// Get returns a state by ID.
	Get(ctx context.Context, id int64) (State, error)

	// Save persists a state and returns the stored state.
	Save(ctx context.Context, s State) (State, error)

	// Delete removes a state.
	Delete(ctx context.Context, id int64) error
}

// TransitionStore persists workflow transitions.
type TransitionStore interface {
	storage.Store[Transition]

	// Get returns a transition by ID.
	Get(ctx context.Context, id int64) (Transition, error)

	// Save persists a transition and returns the stored state.
	Save(ctx context.Context, t Transition) (Transition, error)

	// Delete removes a transition together with its triggers.
	Delete(ctx context.Context, id int64) error
}

// InstanceStore persists workflow instances.
type InstanceStore interface {
	storage.Store[Instance]

	// Get returns an instance by ID.
	Get(ctx context.Context, id int64) (Instance, error)

	// Save persists an instance and returns the stored state.
	Save(ctx context.Context, i Instance) (Instance, error)

	// Delete removes an instance together with its log entries.
	Delete(ctx context.Context, id int64) error
}

// LogStore persists instance log entries.
type LogStore interface {
	storage.Store[LogEntry]

	// Save persists a log entry and returns the stored state.
	Save(ctx context.Context, e LogEntry) (LogEntry, error)
}

// TriggerStore persists transition event triggers.
type TriggerStore interface {
	storage.Store[TriggerEvent]

	// Get returns a trigger by ID.
	Get(ctx context.Context, id int64) (TriggerEvent, error)

	// Save persists a trigger and returns the stored state.
	Save(ctx context.Context, t TriggerEvent) (TriggerEvent, error)

	// Delete removes a trigger.
	Delete(ctx context.Context, id int64) error
}
