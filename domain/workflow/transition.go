package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/pagekeep/doclink/internal/domain"
)

// TimeUnit is the unit of a transition's time trigger period.
type TimeUnit string

// TimeUnit values.
const (
	TimeUnitDays    TimeUnit = "days"
	TimeUnitHours   TimeUnit = "hours"
	TimeUnitMinutes TimeUnit = "minutes"
)

// ParseTimeUnit validates a time unit name.
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch u := TimeUnit(s); u {
	case TimeUnitDays, TimeUnitHours, TimeUnitMinutes:
		return u, nil
	default:
		return "", fmt.Errorf("%w: unknown time unit %q", domain.ErrValidation, s)
	}
}

// String returns the unit name.
func (u TimeUnit) String() string {
	return string(u)
}

// Duration converts a period in this unit to a time.Duration.
func (u TimeUnit) Duration(period int) time.Duration {
	switch u {
	case TimeUnitDays:
		return time.Duration(period) * 24 * time.Hour
	case TimeUnitHours:
		return time.Duration(period) * time.Hour
	case TimeUnitMinutes:
		return time.Duration(period) * time.Minute
	default:
		return 0
	}
}

// Transition moves workflow instances from one state to another. A
// transition may carry a time trigger (fire after a document has sat in the
// origin state for a period) set with WithTimeTrigger; event triggers are
// separate TriggerEvent records.
type Transition struct {
	id            int64
	workflowID    int64
	label         string
	originStateID int64
	destStateID   int64
	triggerPeriod int
	triggerUnit   TimeUnit
}

// NewTransition creates a transition between two states of a workflow.
func NewTransition(workflowID int64, label string, originStateID, destStateID int64) (Transition, error) {
	label = strings.TrimSpace(label)
	if workflowID <= 0 {
		return Transition{}, fmt.Errorf("%w: transition requires a workflow", domain.ErrValidation)
	}
	if label == "" {
		return Transition{}, fmt.Errorf("%w: transition label is required", domain.ErrValidation)
	}
	if originStateID <= 0 || destStateID <= 0 {
		return Transition{}, fmt.Errorf(
			"%w: transition requires origin and destination states", domain.ErrValidation,
		)
	}
	return Transition{
		workflowID:    workflowID,
		label:         label,
		originStateID: originStateID,
		destStateID:   destStateID,
	}, nil
}

// ReconstructTransition creates a Transition from persisted state.
func ReconstructTransition(
	id, workflowID int64,
	label string,
	originStateID, destStateID int64,
	triggerPeriod int,
	triggerUnit TimeUnit,
) Transition {
	return Transition{
		id:            id,
		workflowID:    workflowID,
		label:         label,
		originStateID: originStateID,
		destStateID:   destStateID,
		triggerPeriod: triggerPeriod,
		triggerUnit:   triggerUnit,
	}
}

// ID returns the transition ID.
func (t Transition) ID() int64 { return t.id }

// WorkflowID returns the owning workflow's ID.
func (t Transition) WorkflowID() int64 { return t.workflowID }

// Label returns the transition label.
func (t Transition) Label() string { return t.label }

// OriginStateID returns the state the transition leaves.
func (t Transition) OriginStateID() int64 { return t.originStateID }

// DestinationStateID returns the state the transition enters.
func (t Transition) DestinationStateID() int64 { return t.destStateID }

// TriggerPeriod returns the time trigger period, or 0.
func (t Transition) TriggerPeriod() int { return t.triggerPeriod }

// TriggerUnit returns the time trigger unit, or "".
func (t Transition) TriggerUnit() TimeUnit { return t.triggerUnit }

// HasTimeTrigger returns true when a time trigger is configured.
func (t Transition) HasTimeTrigger() bool {
	return t.triggerPeriod > 0 && t.triggerUnit != ""
}

// TriggerDelay returns how long a document must sit in the origin state
// before the time trigger fires, or 0 when no trigger is set.
func (t Transition) TriggerDelay() time.Duration {
	if !t.HasTimeTrigger() {
		return 0
	}
	return t.triggerUnit.Duration(t.triggerPeriod)
}

// WithID returns a copy with the given ID set.
func (t Transition) WithID(id int64) Transition {
	t.id = id
	return t
}

// WithTimeTrigger returns a copy with a time trigger configured.
func (t Transition) WithTimeTrigger(period int, unit TimeUnit) (Transition, error) {
	if period <= 0 {
		return Transition{}, fmt.Errorf(
			"%w: trigger period must be positive, got %d", domain.ErrValidation, period,
		)
	}
	if _, err := ParseTimeUnit(string(unit)); err != nil {
		return Transition{}, err
	}
	t.triggerPeriod = period
	t.triggerUnit = unit
	return t, nil
}

// ClearTimeTrigger returns a copy without a time trigger.
func (t Transition) ClearTimeTrigger() Transition {
	t.triggerPeriod = 0
	t.triggerUnit = ""
	return t
}

// Update returns a copy with the mutable fields replaced, applying the same
// validation as NewTransition. The time trigger is kept.
func (t Transition) Update(label string, originStateID, destStateID int64) (Transition, error) {
	updated, err := NewTransition(t.workflowID, label, originStateID, destStateID)
	if err != nil {
		return Transition{}, err
	}
	updated.id = t.id
	updated.triggerPeriod = t.triggerPeriod
	updated.triggerUnit = t.triggerUnit
	return updated, nil
}
