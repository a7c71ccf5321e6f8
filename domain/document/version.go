package document

import (
	"fmt"
	"time"

	"github.com/pagekeep/doclink/internal/domain"
)

// Version column limits.
const (
	MaxChecksumLength = 64
	MaxEncodingLength = 64
	MaxMimetypeLength = 255
)

// Version is one stored revision of a document's content. The binary
// content itself lives in version storage, keyed by checksum.
type Version struct {
	id         int64
	documentID int64
	timestamp  time.Time
	comment    string
	checksum   string
	encoding   string
	mimetype   string
	size       int64
}

// NewVersion creates a Version for a document. Content details are attached
// with WithContent once the payload has been stored.
func NewVersion(documentID int64, comment string) (Version, error) {
	if documentID <= 0 {
		return Version{}, fmt.Errorf("%w: version requires a document", domain.ErrValidation)
	}
	return Version{
		documentID: documentID,
		comment:    comment,
		timestamp:  time.Now().UTC(),
	}, nil
}

// ReconstructVersion creates a Version from persisted state.
func ReconstructVersion(
	id, documentID int64,
	timestamp time.Time,
	comment, checksum, encoding, mimetype string,
	size int64,
) Version {
	return Version{
		id:         id,
		documentID: documentID,
		timestamp:  timestamp,
		comment:    comment,
		checksum:   checksum,
		encoding:   encoding,
		mimetype:   mimetype,
		size:       size,
	}
}

// ID returns the version ID.
func (v Version) ID() int64 { return v.id }

// DocumentID returns the owning document's ID.
func (v Version) DocumentID() int64 { return v.documentID }

// Timestamp returns when the version was processed.
func (v Version) Timestamp() time.Time { return v.timestamp }

// Comment returns the optional version comment.
func (v Version) Comment() string { return v.comment }

// Checksum returns the SHA256 hex digest of the content, or "" when no
// content has been attached.
func (v Version) Checksum() string { return v.checksum }

// Encoding returns the detected content encoding.
func (v Version) Encoding() string { return v.encoding }

// Mimetype returns the detected MIME type.
func (v Version) Mimetype() string { return v.mimetype }

// Size returns the content size in bytes.
func (v Version) Size() int64 { return v.size }

// HasContent returns true once content details have been attached.
func (v Version) HasContent() bool { return v.checksum != "" }

// WithID returns a copy with the given ID set.
func (v Version) WithID(id int64) Version {
	v.id = id
	return v
}

// WithContent returns a copy carrying the stored content's fingerprint.
func (v Version) WithContent(checksum, mimetype, encoding string, size int64) Version {
	v.checksum = checksum
	v.mimetype = mimetype
	v.encoding = encoding
	v.size = size
	return v
}
