// Package apperr holds the error taxonomy shared by the catalog packages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a malformed request or upload.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a uniqueness violation at the storage layer.
	ErrConflict = errors.New("conflict")
)

// NotFoundError names the missing record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError is returned before any mutation happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Conflict wraps err so that errors.Is(err, ErrConflict) holds.
func Conflict(what string, err error) error {
	return fmt.Errorf("%s: %w: %w", what, ErrConflict, err)
}
