package linking

import "github.com/pagekeep/doclink/domain/storage"

// Typed query options for linking stores.

// WithSmartLinkID filters conditions by owning smart link.
func WithSmartLinkID(linkID int64) storage.Option {
	return storage.WithCondition("smart_link_id", linkID)
}

// WithEnabled filters smart links or conditions by enabled state.
func WithEnabled(enabled bool) storage.Option {
	return storage.WithCondition("enabled", enabled)
}

// WithLabelContains filters smart links by a case-insensitive label
// substring.
func WithLabelContains(substring string) storage.Option {
	return storage.WithConditionLike("label", substring)
}

// InCreationOrder orders rows by ascending ID, the order conditions are
// evaluated in.
func InCreationOrder() storage.Option {
	return storage.WithOrderAsc("id")
}
