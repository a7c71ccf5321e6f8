package event

import (
	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/storage"
)

// Typed query options for event stores.

// WithStoredTypeID filters records by stored event type.
func WithStoredTypeID(storedTypeID int64) storage.Option {
	return storage.WithCondition("stored_type_id", storedTypeID)
}

// WithTypeName filters stored types by full name.
func WithTypeName(t Type) storage.Option {
	return storage.WithCondition("name", string(t))
}

// WithActorID filters records by acting user.
func WithActorID(actorID int64) storage.Option {
	return storage.WithCondition("actor_id", actorID)
}

// WithTarget filters records by acted-on object.
func WithTarget(kind access.TargetKind, targetID int64) storage.Option {
	return func(q storage.Query) storage.Query {
		q = storage.WithCondition("target_type", string(kind))(q)
		return storage.WithCondition("target_id", targetID)(q)
	}
}

// ByDatetimeDesc orders records newest first.
func ByDatetimeDesc() storage.Option {
	return storage.WithOrderDesc("datetime")
}
