package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no item has the requested ID.
	ErrNotFound = errors.New("item not found")

	// ErrInvalidOperation marks a request the current state does not allow.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrNotDue is returned when progress is recorded on a date the item is
	// not scheduled for.
	ErrNotDue = fmt.Errorf("%w: item is not due on that date", ErrInvalidOperation)

	// ErrDeleteNotRequested is returned when a delete is confirmed without a
	// pending delete request.
	ErrDeleteNotRequested = fmt.Errorf("%w: delete was not requested", ErrInvalidOperation)
)

// ValidationError reports user input that cannot become a valid item.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a failure reported by the record store. In-memory
// state is left as it was before the failed operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err is (or wraps) a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
