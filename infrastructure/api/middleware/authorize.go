package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/internal/domain"
)

// AccessChecker answers permission checks for a principal.
type AccessChecker interface {
	CheckAccess(
		ctx context.Context,
		user access.User,
		permission access.Permission,
		resource access.Resource,
	) error
}

// ResourceResolver derives the resource a request targets from its URL
// parameters before handler dispatch.
type ResourceResolver func(r *http.Request) (access.Resource, error)

// GlobalResource resolves every request to the unscoped resource, for
// permissions checked globally (create operations, registries).
func GlobalResource(*http.Request) (access.Resource, error) {
	return access.Resource{}, nil
}

// ObjectResource resolves an object-scoped resource from the named URL
// parameter.
func ObjectResource(kind access.TargetKind, param string) ResourceResolver {
	return func(r *http.Request) (access.Resource, error) {
		id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
		if err != nil {
			return access.Resource{}, fmt.Errorf("%w: invalid %s", domain.ErrValidation, param)
		}
		return access.NewResource(kind, id), nil
	}
}

// RequireAuthenticated returns a middleware rejecting anonymous requests
// with 401. Routes layer RequireAccess on top for permission checks.
func RequireAuthenticated(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsAnonymous(GetPrincipal(r.Context())) {
				WriteError(w, r, domain.ErrNotAuthenticated, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAccess returns a middleware admitting only principals that hold
// the permission on the resolved resource. Anonymous principals receive
// 401, denied principals 403. Handlers behind this middleware do not check
// again.
func RequireAccess(
	checker AccessChecker,
	permission access.Permission,
	resolve ResourceResolver,
	logger *slog.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipal(r.Context())
			if IsAnonymous(principal) {
				WriteError(w, r, fmt.Errorf("%s: %w", permission, domain.ErrNotAuthenticated), logger)
				return
			}

			resource, err := resolve(r)
			if err != nil {
				WriteError(w, r, err, logger)
				return
			}

			if err := checker.CheckAccess(r.Context(), principal, permission, resource); err != nil {
				WriteError(w, r, err, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
