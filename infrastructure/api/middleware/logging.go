// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Logging returns middleware that writes one structured line per request
// once the response is complete. Install it after CorrelationID so the
// line carries the same ID the client sees in the X-Correlation-ID header.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// Deferred so the line still appears when a handler panics
			// and the recoverer takes over the response.
			defer func() {
				id := GetCorrelationID(r.Context())
				if id == "" {
					id = middleware.GetReqID(r.Context())
				}
				logger.LogAttrs(r.Context(), slog.LevelInfo, "request completed",
					slog.String("correlation_id", id),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", ww.Status()),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Int64("duration_ms", time.Since(start).Milliseconds()),
					slog.String("remote_addr", r.RemoteAddr),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
