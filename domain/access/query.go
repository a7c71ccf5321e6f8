package access

import "github.com/pagekeep/doclink/domain/storage"

// Typed query options for access stores.

// WithUserID filters entries by grantee.
func WithUserID(userID int64) storage.Option {
	return storage.WithCondition("user_id", userID)
}

// WithUsername filters users by username.
func WithUsername(username string) storage.Option {
	return storage.WithCondition("username", username)
}

// WithActive filters users by active state.
func WithActive(isActive bool) storage.Option {
	return storage.WithCondition("is_active", isActive)
}

// WithPermission filters entries by permission.
func WithPermission(p Permission) storage.Option {
	return storage.WithCondition("permission", string(p))
}

// WithObject filters entries scoped to a specific object.
func WithObject(kind TargetKind, objectID int64) storage.Option {
	return func(q storage.Query) storage.Query {
		q = storage.WithCondition("object_type", string(kind))(q)
		return storage.WithCondition("object_id", objectID)(q)
	}
}

// WithGlobalScope filters entries that apply everywhere.
func WithGlobalScope() storage.Option {
	return storage.WithConditionNull("object_type", true)
}

// ByUsername orders users alphabetically.
func ByUsername() storage.Option {
	return storage.WithOrderAsc("username")
}
