package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pagekeep/doclink/infrastructure/api/jsonapi"
	"github.com/pagekeep/doclink/internal/database"
	"github.com/pagekeep/doclink/internal/domain"
)

// WriteError writes a JSON:API error response. Domain sentinels map to their
// HTTP status; anything unrecognized becomes a 500 whose detail is withheld
// from the body so internal messages never reach clients.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, title := classify(err)

	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "internal server error"
	}

	correlationID := GetCorrelationID(r.Context())

	if logger != nil {
		logger.LogAttrs(r.Context(), slog.LevelError, "request error",
			slog.String("correlation_id", correlationID),
			slog.Int("status", status),
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
	}

	apiError := jsonapi.NewError(strconv.Itoa(status), title, detail)
	apiError.ID = correlationID

	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonapi.NewErrorResponse(apiError))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Not Authenticated"
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, "Permission Denied"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "Validation Error"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "Conflict"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// WriteJSON writes a JSON response. A 204 or nil payload produces an empty
// body.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status == http.StatusNoContent || data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}
