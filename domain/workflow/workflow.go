// Package workflow defines document workflows: state machines attached to
// document types, with transitions executed manually or fired by time and
// event triggers.
package workflow

import (
	"fmt"
	"strings"

	"github.com/pagekeep/doclink/internal/domain"
)

// MaxWorkflowLabelLength bounds a workflow label.
const MaxWorkflowLabelLength = 255

// Workflow is a named state machine. Documents of the workflow's assigned
// types get an instance of it on creation.
type Workflow struct {
	id           int64
	label        string
	internalName string
}

// NewWorkflow creates a workflow. An empty internal name is derived from
// the label (lowercased, whitespace replaced with underscores).
func NewWorkflow(label, internalName string) (Workflow, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Workflow{}, fmt.Errorf("%w: workflow label is required", domain.ErrValidation)
	}
	if len(label) > MaxWorkflowLabelLength {
		return Workflow{}, fmt.Errorf(
			"%w: workflow label exceeds %d characters", domain.ErrValidation, MaxWorkflowLabelLength,
		)
	}
	if internalName == "" {
		internalName = deriveInternalName(label)
	}
	if strings.ContainsAny(internalName, " \t\n") {
		return Workflow{}, fmt.Errorf(
			"%w: internal name must not contain whitespace", domain.ErrValidation,
		)
	}
	return Workflow{label: label, internalName: internalName}, nil
}

// ReconstructWorkflow creates a Workflow from persisted state.
func ReconstructWorkflow(id int64, label, internalName string) Workflow {
	return Workflow{id: id, label: label, internalName: internalName}
}

// ID returns the workflow ID.
func (w Workflow) ID() int64 { return w.id }

// Label returns the workflow label.
func (w Workflow) Label() string { return w.label }

// InternalName returns the machine name.
func (w Workflow) InternalName() string { return w.internalName }

// WithID returns a copy with the given ID set.
func (w Workflow) WithID(id int64) Workflow {
	w.id = id
	return w
}

// Rename returns a copy with a new label. The internal name is kept.
func (w Workflow) Rename(label string) (Workflow, error) {
	renamed, err := NewWorkflow(label, w.internalName)
	if err != nil {
		return Workflow{}, err
	}
	renamed.id = w.id
	return renamed, nil
}

func deriveInternalName(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), "_"))
}
