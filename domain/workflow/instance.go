package workflow

import (
	"fmt"
	"time"

	"github.com/pagekeep/doclink/internal/domain"
)

// Instance is one document moving through one workflow. A document has at
// most one instance per workflow.
type Instance struct {
	id         int64
	workflowID int64
	documentID int64
	launchedAt time.Time
}

// NewInstance launches a workflow for a document.
func NewInstance(workflowID, documentID int64) (Instance, error) {
	if workflowID <= 0 {
		return Instance{}, fmt.Errorf("%w: instance requires a workflow", domain.ErrValidation)
	}
	if documentID <= 0 {
		return Instance{}, fmt.Errorf("%w: instance requires a document", domain.ErrValidation)
	}
	return Instance{
		workflowID: workflowID,
		documentID: documentID,
		launchedAt: time.Now().UTC(),
	}, nil
}

// ReconstructInstance creates an Instance from persisted state.
func ReconstructInstance(id, workflowID, documentID int64, launchedAt time.Time) Instance {
	return Instance{
		id:         id,
		workflowID: workflowID,
		documentID: documentID,
		launchedAt: launchedAt,
	}
}

// ID returns the instance ID.
func (i Instance) ID() int64 { return i.id }

// WorkflowID returns the workflow being executed.
func (i Instance) WorkflowID() int64 { return i.workflowID }

// DocumentID returns the document moving through the workflow.
func (i Instance) DocumentID() int64 { return i.documentID }

// LaunchedAt returns when the instance was created.
func (i Instance) LaunchedAt() time.Time { return i.launchedAt }

// WithID returns a copy with the given ID set.
func (i Instance) WithID(id int64) Instance {
	i.id = id
	return i
}

// LogEntry records one executed transition of an instance. A zero user ID
// marks a transition executed by the system (time or event trigger).
type LogEntry struct {
	id           int64
	instanceID   int64
	transitionID int64
	userID       int64
	comment      string
	datetime     time.Time
}

// NewLogEntry records a transition execution. Pass userID 0 for
// system-executed transitions.
func NewLogEntry(instanceID, transitionID, userID int64, comment string) (LogEntry, error) {
	if instanceID <= 0 {
		return LogEntry{}, fmt.Errorf("%w: log entry requires an instance", domain.ErrValidation)
	}
	if transitionID <= 0 {
		return LogEntry{}, fmt.Errorf("%w: log entry requires a transition", domain.ErrValidation)
	}
	return LogEntry{
		instanceID:   instanceID,
		transitionID: transitionID,
		userID:       userID,
		comment:      comment,
		datetime:     time.Now().UTC(),
	}, nil
}

// ReconstructLogEntry creates a LogEntry from persisted state.
func ReconstructLogEntry(
	id, instanceID, transitionID, userID int64,
	comment string,
	datetime time.Time,
) LogEntry {
	return LogEntry{
		id:           id,
		instanceID:   instanceID,
		transitionID: transitionID,
		userID:       userID,
		comment:      comment,
		datetime:     datetime,
	}
}

// ID returns the log entry ID.
func (e LogEntry) ID() int64 { return e.id }

// InstanceID returns the owning instance's ID.
func (e LogEntry) InstanceID() int64 { return e.instanceID }

// TransitionID returns the executed transition's ID.
func (e LogEntry) TransitionID() int64 { return e.transitionID }

// UserID returns the acting user's ID, or 0 for the system.
func (e LogEntry) UserID() int64 { return e.userID }

// BySystem returns true for system-executed transitions.
func (e LogEntry) BySystem() bool { return e.userID == 0 }

// Comment returns the optional comment.
func (e LogEntry) Comment() string { return e.comment }

// Datetime returns when the transition was executed.
func (e LogEntry) Datetime() time.Time { return e.datetime }

// WithID returns a copy with the given ID set.
func (e LogEntry) WithID(id int64) LogEntry {
	e.id = id
	return e
}
