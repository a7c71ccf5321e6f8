package workflow

import (
	"fmt"
	"strings"

	"github.com/pagekeep/doclink/internal/domain"
)

// State is one node of a workflow. Exactly one state per workflow should be
// initial; new instances start there.
type State struct {
	id         int64
	workflowID int64
	label      string
	initial    bool
	completion int
}

// NewState creates a workflow state. Completion is the percentage the
// workflow is considered done when a document sits in this state.
func NewState(workflowID int64, label string, initial bool, completion int) (State, error) {
	label = strings.TrimSpace(label)
	if workflowID <= 0 {
		return State{}, fmt.Errorf("%w: state requires a workflow", domain.ErrValidation)
	}
	if label == "" {
		return State{}, fmt.Errorf("%w: state label is required", domain.ErrValidation)
	}
	if completion < 0 || completion > 100 {
		return State{}, fmt.Errorf(
			"%w: completion must be between 0 and 100, got %d", domain.ErrValidation, completion,
		)
	}
	return State{
		workflowID: workflowID,
		label:      label,
		initial:    initial,
		completion: completion,
	}, nil
}

// ReconstructState creates a State from persisted state.
func ReconstructState(id, workflowID int64, label string, initial bool, completion int) State {
	return State{
		id:         id,
		workflowID: workflowID,
		label:      label,
		initial:    initial,
		completion: completion,
	}
}

// ID returns the state ID.
func (s State) ID() int64 { return s.id }

// WorkflowID returns the owning workflow's ID.
func (s State) WorkflowID() int64 { return s.workflowID }

// Label returns the state label.
func (s State) Label() string { return s.label }

// Initial returns true for the workflow's starting state.
func (s State) Initial() bool { return s.initial }

// Completion returns the completion percentage for this state.
func (s State) Completion() int { return s.completion }

// WithID returns a copy with the given ID set.
func (s State) WithID(id int64) State {
	s.id = id
	return s
}

// WithInitial returns a copy with the initial flag set.
func (s State) WithInitial(initial bool) State {
	s.initial = initial
	return s
}

// Update returns a copy with the mutable fields replaced, applying the same
// validation as NewState.
func (s State) Update(label string, initial bool, completion int) (State, error) {
	updated, err := NewState(s.workflowID, label, initial, completion)
	if err != nil {
		return State{}, err
	}
	updated.id = s.id
	return updated, nil
}
