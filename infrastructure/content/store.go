// Package content stores document version payloads on disk, addressed by
// the SHA256 checksum of their bytes. Two versions with identical content
// share a single file.
package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pagekeep/doclink/internal/domain"
)

var checksumPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Store is a content-addressed file store rooted at a single directory.
// Payloads live at <root>/<first two hex chars>/<checksum>.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore creates a Store rooted at the given directory.
func NewStore(root string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: root, logger: logger}
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// Checksum returns the SHA256 hex digest of a payload.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Detect sniffs the MIME type and encoding of a payload. Text payloads
// report their charset as the encoding; everything else reports "binary".
func Detect(data []byte) (mimetype, encoding string) {
	contentType := http.DetectContentType(data)
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType, "binary"
	}
	if charset, ok := params["charset"]; ok {
		return mediaType, charset
	}
	return mediaType, "binary"
}

// Write stores a payload and returns its checksum and size. Writing a
// payload that is already stored is a no-op.
func (s *Store) Write(data []byte) (string, int64, error) {
	checksum := Checksum(data)
	path := s.path(checksum)

	if _, err := os.Stat(path); err == nil {
		return checksum, int64(len(data)), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", 0, fmt.Errorf("create content directory: %w", err)
	}

	// Write to a temp file first so a crash never leaves a partial payload
	// under its final checksum name.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".write-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("write content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("store content: %w", err)
	}

	s.logger.Debug("content stored",
		slog.String("checksum", checksum),
		slog.Int("size", len(data)),
	)

	return checksum, int64(len(data)), nil
}

// Read returns the payload stored under a checksum.
func (s *Store) Read(checksum string) ([]byte, error) {
	if !checksumPattern.MatchString(checksum) {
		return nil, fmt.Errorf("%w: malformed checksum %q", domain.ErrValidation, checksum)
	}
	data, err := os.ReadFile(s.path(checksum))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("content %s: %w", checksum, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return data, nil
}

// Exists reports whether a payload is stored under a checksum.
func (s *Store) Exists(checksum string) bool {
	if !checksumPattern.MatchString(checksum) {
		return false
	}
	_, err := os.Stat(s.path(checksum))
	return err == nil
}

// Remove deletes the payload stored under a checksum. Removing absent
// content is a no-op.
func (s *Store) Remove(checksum string) error {
	if !checksumPattern.MatchString(checksum) {
		return fmt.Errorf("%w: malformed checksum %q", domain.ErrValidation, checksum)
	}
	if err := os.Remove(s.path(checksum)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove content: %w", err)
	}
	return nil
}

func (s *Store) path(checksum string) string {
	return filepath.Join(s.root, checksum[:2], checksum)
}
