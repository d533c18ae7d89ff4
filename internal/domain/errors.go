// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when submitted input fails basic constraints.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an operation references an unknown task.
	ErrNotFound = errors.New("task not found")

	// ErrConflict is returned when an operation is not allowed in the
	// task's current state, e.g. deleting a task that is still running.
	ErrConflict = errors.New("task state conflict")

	// ErrExtraction is returned when the materials provider cannot obtain
	// readable text from a document.
	ErrExtraction = errors.New("no readable text found")

	// ErrUnauthorized is returned when a request lacks valid credentials.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes which field failed validation and why.
// It wraps an underlying sentinel so callers can match with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
