package document

import "github.com/pagekeep/doclink/domain/storage"

// Typed query options for document stores.

// WithTypeID filters documents by document type.
func WithTypeID(typeID int64) storage.Option {
	return storage.WithCondition("document_type_id", typeID)
}

// WithTypeIDIn filters documents by a set of document types.
func WithTypeIDIn(typeIDs []int64) storage.Option {
	return storage.WithConditionIn("document_type_id", typeIDs)
}

// WithUUID filters documents by UUID.
func WithUUID(u string) storage.Option {
	return storage.WithCondition("uuid", u)
}

// WithInTrash filters documents by trash state.
func WithInTrash(inTrash bool) storage.Option {
	return storage.WithCondition("in_trash", inTrash)
}

// WithLabelContains filters by a case-insensitive label substring.
func WithLabelContains(substring string) storage.Option {
	return storage.WithConditionLike("label", substring)
}

// WithTypeLabel filters document types by exact label.
func WithTypeLabel(label string) storage.Option {
	return storage.WithCondition("label", label)
}

// WithDocumentID filters versions or metadata by owning document.
func WithDocumentID(documentID int64) storage.Option {
	return storage.WithCondition("document_id", documentID)
}

// WithChecksum filters versions by content checksum.
func WithChecksum(checksum string) storage.Option {
	return storage.WithCondition("checksum", checksum)
}

// WithMetadataTypeID filters metadata records by metadata type.
func WithMetadataTypeID(typeID int64) storage.Option {
	return storage.WithCondition("metadata_type_id", typeID)
}

// WithMetadataTypeName filters metadata types by machine name.
func WithMetadataTypeName(name string) storage.Option {
	return storage.WithCondition("name", name)
}

// ByDateAddedDesc orders documents newest first.
func ByDateAddedDesc() storage.Option {
	return storage.WithOrderDesc("date_added")
}

// ByTimestampDesc orders versions newest first.
func ByTimestampDesc() storage.Option {
	return storage.WithOrderDesc("timestamp")
}

// ByLabel orders by label ascending.
func ByLabel() storage.Option {
	return storage.WithOrderAsc("label")
}
