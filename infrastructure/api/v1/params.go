// Package v1 provides the v1 API routes.
package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pagekeep/doclink/internal/domain"
)

// idParam parses a numeric URL parameter.
func idParam(req *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(req, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrValidation, name)
	}
	return id, nil
}

// invalidBody wraps a request decoding failure so it maps to 400.
func invalidBody(err error) error {
	return fmt.Errorf("%w: malformed request body: %s", domain.ErrValidation, err)
}
