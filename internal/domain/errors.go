package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that carry their own HTTP status code
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - match with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ConflictError reports a clash with an existing resource.
// errors.Is(err, ErrConflict) matches it.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // e.g. "node"
	ResourceID   string // ID of the existing resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements HTTPError
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
