package client

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. Every error returned by HTTPClient matches
// exactly one of them (or is a context error).
var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("already exists")
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnknownBackend = errors.New("unexpected backend response")
)

// APIError carries the status and error body of a failed call.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (HTTP %d)", e.Unwrap(), e.Status)
	}
	return fmt.Sprintf("%v (HTTP %d): %s", e.Unwrap(), e.Status, e.Message)
}

// Unwrap returns the sentinel for the status.
func (e *APIError) Unwrap() error { return kindForStatus(e.Status) }

// kindForStatus classifies a non-2xx status.
func kindForStatus(status int) error {
	switch status {
	case 401:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	case 400, 422:
		return ErrValidation
	case 409:
		return ErrConflict
	case 429, 502, 503, 504:
		return ErrUnavailable
	default:
		return ErrUnknownBackend
	}
}
