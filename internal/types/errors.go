package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Compare with errors.Is, they are usually wrapped.
var (
	// ErrNotFound is returned when no record matches an identifier.
	ErrNotFound = errors.New("student not found")

	// ErrInvalidIdentifier is returned when a path id is not a string the
	// datastore could ever have produced.
	ErrInvalidIdentifier = errors.New("invalid student id")
)

// FieldError describes one offending input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (f FieldError) String() string {
	return fmt.Sprintf("field %s %s", f.Field, f.Reason)
}

// ValidationError is returned for malformed or out-of-range input: body
// shape, field constraints and pagination bounds alike.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.String())
	}
	return strings.Join(msgs, ", ")
}

// PersistenceError wraps any datastore failure that is not a plain miss.
// Op names the storage operation, e.g. "CreateStudent".
type PersistenceError struct {
	Op  string
	Err error
}

// Persistence wraps err as a *PersistenceError. A nil err stays nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }
