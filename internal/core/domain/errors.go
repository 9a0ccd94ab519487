package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("todo not found")
	ErrStorage  = errors.New("storage failure")
	ErrBlank    = errors.New("todo text must not be blank")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field string
	Err   error
}

func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StorageError wraps a driver or pool failure so callers can match it with ErrStorage.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

func NotFound(id int64) error {
	return fmt.Errorf("todo %d: %w", id, ErrNotFound)
}
