// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySegment is returned when a segment has no conditions.
	ErrEmptySegment = errors.New("segment must have at least one condition")

	// ErrInvalidCombinator is returned for a combinator other than AND or OR.
	ErrInvalidCombinator = errors.New("combinator must be AND or OR")
)

// MissingFieldError rejects incomplete client input.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

func NewMissingField(field string) error {
	return &MissingFieldError{Field: field}
}

// InvalidFieldError rejects a client field whose value has the wrong shape.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

func NewInvalidField(field, reason string) error {
	return &InvalidFieldError{Field: field, Reason: reason}
}

// UnsupportedConditionError is a segment configuration error, never a runtime skip.
type UnsupportedConditionError struct {
	Field    string
	Operator string
}

func (e *UnsupportedConditionError) Error() string {
	return fmt.Sprintf("unsupported condition: field %q operator %q", e.Field, e.Operator)
}

func NewUnsupportedCondition(field, operator string) error {
	return &UnsupportedConditionError{Field: field, Operator: operator}
}

// InvalidStatusError rejects delivery statuses other than SENT and FAILED.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid delivery status %q (expected SENT or FAILED)", e.Status)
}

func NewInvalidStatus(status string) error {
	return &InvalidStatusError{Status: status}
}

// StoreWriteError wraps a persistence failure.
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store write failed (%s): %v", e.Op, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}

func NewStoreWriteFailure(op string, err error) error {
	return &StoreWriteError{Op: op, Err: err}
}

// NotFoundError is returned by lookups that find nothing.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Kind, e.ID)
}

func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsValidation reports whether err is a client input or segment definition error.
func IsValidation(err error) bool {
	var missing *MissingFieldError
	var invalid *InvalidFieldError
	var unsupported *UnsupportedConditionError
	var status *InvalidStatusError
	return errors.As(err, &missing) ||
		errors.As(err, &invalid) ||
		errors.As(err, &unsupported) ||
		errors.As(err, &status) ||
		errors.Is(err, ErrEmptySegment) ||
		errors.Is(err, ErrInvalidCombinator)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
