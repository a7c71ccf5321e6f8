package document

import (
	"context"

	"github.com/pagekeep/doclink/domain/storage"
)

// Store persists documents.
type Store interface {
	storage.Store[Document]

	// Get returns a document by ID.
	Get(ctx context.Context, id int64) (Document, error)

	// Save persists a document and returns the stored state.
	Save(ctx context.Context, doc Document) (Document, error)

	// Delete removes a document together with its versions, metadata
	// values, and workflow instances.
	Delete(ctx context.Context, id int64) error
}

// TypeStore persists document types.
type TypeStore interface {
	storage.Store[Type]

	// Get returns a document type by ID.
	Get(ctx context.Context, id int64) (Type, error)

	// Save persists a document type and returns the stored state.
	Save(ctx context.Context, t Type) (Type, error)

	// Delete removes a document type.
	Delete(ctx context.Context, id int64) error
}

// VersionStore persists document versions.
type VersionStore interface {
	storage.Store[Version]

	// Get returns a version by ID.
	Get(ctx context.Context, id int64) (Version, error)

	// Save persists a version and returns the stored state.
	Save(ctx context.Context, v Version) (Version, error)

	// Delete removes a version.
	Delete(ctx context.Context, id int64) error
}

// MetadataTypeStore persists metadata types.
type MetadataTypeStore interface {
	storage.Store[MetadataType]

	// Get returns a metadata type by ID.
	Get(ctx context.Context, id int64) (MetadataType, error)

	// Save persists a metadata type and returns the stored state.
	Save(ctx context.Context, t MetadataType) (MetadataType, error)

	// Delete removes a metadata type and the document values attached to it.
	Delete(ctx context.Context, id int64) error
}

// MetadataStore persists per-document metadata values.
type MetadataStore interface {
	storage.Store[Metadata]

	// Get returns a metadata record by ID.
	Get(ctx context.Context, id int64) (Metadata, error)

	// Save persists a metadata record and returns the stored state.
	Save(ctx context.Context, m Metadata) (Metadata, error)

	// Delete removes a metadata record.
	Delete(ctx context.Context, id int64) error

	// ValuesFor returns a document's metadata as a name to value map.
	ValuesFor(ctx context.Context, documentID int64) (map[string]string, error)

	// ValuesForAll returns metadata maps for several documents, keyed by
	// document ID. Documents without metadata map to an empty map.
	ValuesForAll(ctx context.Context, documentIDs []int64) (map[int64]map[string]string, error)
}
