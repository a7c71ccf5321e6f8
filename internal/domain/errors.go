package domain

import "errors"

// Domain errors.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a validation error.
	ErrValidation = errors.New("validation error")

	// ErrConflict indicates a conflict with existing data.
	ErrConflict = errors.New("conflict")

	// ErrPermissionDenied indicates the acting principal lacks the
	// permission required for an operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotAuthenticated indicates a request without a resolvable principal.
	ErrNotAuthenticated = errors.New("not authenticated")
)
