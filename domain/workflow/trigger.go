package workflow

import (
	"fmt"

	"github.com/pagekeep/doclink/internal/domain"
)

// TriggerEvent fires a transition automatically when an event of the given
// stored type is committed for a document whose instance sits in the
// transition's origin state.
type TriggerEvent struct {
	id           int64
	transitionID int64
	eventTypeID  int64
}

// NewTriggerEvent associates a stored event type with a transition.
func NewTriggerEvent(transitionID, eventTypeID int64) (TriggerEvent, error) {
	if transitionID <= 0 {
		return TriggerEvent{}, fmt.Errorf("%w: trigger requires a transition", domain.ErrValidation)
	}
	if eventTypeID <= 0 {
		return TriggerEvent{}, fmt.Errorf("%w: trigger requires an event type", domain.ErrValidation)
	}
	return TriggerEvent{transitionID: transitionID, eventTypeID: eventTypeID}, nil
}

// ReconstructTriggerEvent creates a TriggerEvent from persisted state.
func ReconstructTriggerEvent(id, transitionID, eventTypeID int64) TriggerEvent {
	return TriggerEvent{id: id, transitionID: transitionID, eventTypeID: eventTypeID}
}

// ID returns the trigger ID.
func (t TriggerEvent) ID() int64 { return t.id }

// TransitionID returns the transition to execute.
func (t TriggerEvent) TransitionID() int64 { return t.transitionID }

// EventTypeID returns the stored event type that fires the trigger.
func (t TriggerEvent) EventTypeID() int64 { return t.eventTypeID }

// WithID returns a copy with the given ID set.
func (t TriggerEvent) WithID(id int64) TriggerEvent {
	t.id = id
	return t
}
