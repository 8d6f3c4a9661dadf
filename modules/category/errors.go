package category

import (
	"errors"
	"fmt"
)

// Sentinel errors for category operations.
var (
	// ErrNotFound is returned when a category does not exist, is
	// soft-deleted, or is not owned by the caller.
	ErrNotFound = errors.New("category not found")

	// ErrUnauthorized is returned when no caller identity was supplied.
	// The message is deliberately distinctive: adapters recover this
	// sentinel from transport-flattened errors by matching it.
	ErrUnauthorized = errors.New("unauthorized: no caller identity")
)

// ValidationError reports an input constraint violation for a named field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
