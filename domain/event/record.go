package event

import (
	"fmt"
	"time"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/internal/domain"
)

// Record is one committed event: who did what to which object, when. A zero
// actor ID marks a system action.
type Record struct {
	id           int64
	storedTypeID int64
	actorID      int64
	targetKind   access.TargetKind
	targetID     int64
	datetime     time.Time
}

// NewRecord commits an event against a target object.
func NewRecord(storedTypeID, actorID int64, targetKind access.TargetKind, targetID int64) (Record, error) {
	if storedTypeID <= 0 {
		return Record{}, fmt.Errorf("%w: event requires a stored type", domain.ErrValidation)
	}
	if _, err := access.ParseTargetKind(string(targetKind)); err != nil {
		return Record{}, err
	}
	if targetID <= 0 {
		return Record{}, fmt.Errorf("%w: event requires a target", domain.ErrValidation)
	}
	return Record{
		storedTypeID: storedTypeID,
		actorID:      actorID,
		targetKind:   targetKind,
		targetID:     targetID,
		datetime:     time.Now().UTC(),
	}, nil
}

// ReconstructRecord creates a Record from persisted state.
func ReconstructRecord(
	id, storedTypeID, actorID int64,
	targetKind access.TargetKind,
	targetID int64,
	datetime time.Time,
) Record {
	return Record{
		id:           id,
		storedTypeID: storedTypeID,
		actorID:      actorID,
		targetKind:   targetKind,
		targetID:     targetID,
		datetime:     datetime,
	}
}

// ID returns the record ID.
func (r Record) ID() int64 { return r.id }

// StoredTypeID returns the event's stored type row ID.
func (r Record) StoredTypeID() int64 { return r.storedTypeID }

// ActorID returns the acting user's ID, or 0 for the system.
func (r Record) ActorID() int64 { return r.actorID }

// BySystem returns true for system actions.
func (r Record) BySystem() bool { return r.actorID == 0 }

// TargetKind returns the kind of the acted-on object.
func (r Record) TargetKind() access.TargetKind { return r.targetKind }

// TargetID returns the acted-on object's ID.
func (r Record) TargetID() int64 { return r.targetID }

// Datetime returns when the event was committed.
func (r Record) Datetime() time.Time { return r.datetime }

// WithID returns a copy with the given ID set.
func (r Record) WithID(id int64) Record {
	r.id = id
	return r
}
