package transaction

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// Entity names used in NotFoundError.
const (
	EntityTransaction = "transaction"
	EntityActivity    = "activity"
	EntityDocument    = "document"
)

// NotFoundError reports which identifier failed to resolve.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
