package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pagekeep/doclink/domain/access"
)

// PrincipalHeader is the trusted header carrying the acting username.
// Authentication happens upstream; the API trusts this header as-is.
const PrincipalHeader = "X-Auth-User"

// UserLookup resolves a username to a user account.
type UserLookup interface {
	ByUsername(ctx context.Context, username string) (access.User, error)
}

type principalKey struct{}

// Principal returns a middleware that resolves the acting user from the
// identity header. A missing header, or one naming an unknown username,
// leaves the request anonymous; the permission gate denies anonymous
// principals on its own.
func Principal(users UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var principal access.User

			if username := strings.TrimSpace(r.Header.Get(PrincipalHeader)); username != "" {
				user, err := users.ByUsername(r.Context(), username)
				if err != nil {
					logger.Debug("unresolved principal",
						"username", username,
						"error", err.Error(),
					)
				} else {
					principal = user
				}
			}

			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal retrieves the acting user from the context. The zero User
// (anonymous) is returned when no principal was resolved.
func GetPrincipal(ctx context.Context) access.User {
	if user, ok := ctx.Value(principalKey{}).(access.User); ok {
		return user
	}
	return access.User{}
}

// IsAnonymous reports whether the user is the unresolved principal.
func IsAnonymous(user access.User) bool {
	return user.ID() == 0
}
