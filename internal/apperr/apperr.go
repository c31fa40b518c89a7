// Package apperr defines the error categories shared by the service and
// handler layers. Stores return wrapped driver errors; services translate
// them into one of these before they reach a handler.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no user id was available for a scoped operation.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound means the referenced record no longer exists.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable wraps transient storage failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports a rejected field. It blocks the submission that
// carried it; nothing is partially written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a *ValidationError.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Store wraps a storage error as transient, preserving the cause.
func Store(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
