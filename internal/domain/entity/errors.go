package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("account with this email already exists")
)

// ValidationError is a client-caused failure on a single field.
// Details optionally carries every failing field when more than one was checked.
type ValidationError struct {
	Field   string
	Message string
	Details map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Missing required field: '%s'", e.Field)
}

// MissingField reports an absent required field.
func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field}
}

// NotFoundError names the account id that could not be resolved.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Account with id %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
