// Package common defines shared constants and sentinel errors used across
// client and server layers of taskkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors; wrapped with a field-specific message.
	ErrorValidation = errors.New("validation error")
)

// ValidationError carries a message that is safe to return to the caller.
// It matches ErrorValidation under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return ErrorValidation.Error() + ": " + e.Msg }

func (e *ValidationError) Unwrap() error { return ErrorValidation }
