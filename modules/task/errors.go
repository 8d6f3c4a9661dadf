package task

import (
	"errors"
	"fmt"
)

// Sentinel errors for task operations.
var (
	// ErrNotFound is returned when a task does not exist, is soft-deleted,
	// or is not owned by the caller. Ownership failures are deliberately
	// indistinguishable from missing rows.
	ErrNotFound = errors.New("task not found")

	// ErrUnauthorized is returned when no caller identity was supplied.
	// The message is deliberately distinctive: adapters recover this
	// sentinel from transport-flattened errors by matching it.
	ErrUnauthorized = errors.New("unauthorized: no caller identity")
)

// ValidationError reports an input constraint violation for a named field.
// It is returned before any store access and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// newValidationError builds a field-scoped validation error.
func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
