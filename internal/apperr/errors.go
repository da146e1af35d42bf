// Package apperr defines the sentinel errors shared across service, transport
// and client layers. Callers match them with errors.Is / errors.As.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced issue or user does not exist. Terminal.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable means the store or transport is unreachable. Transient,
	// safe for the caller to retry.
	ErrUnavailable = errors.New("service unavailable")

	// ErrEmailTaken means the registration email is already in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials means login email/password did not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports a missing or malformed required field. Terminal for
// the call; never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for a field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
