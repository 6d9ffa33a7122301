package domain

import "errors"

var (
	// ErrNotFound indicates a referenced entity does not exist (or belongs
	// to another account).
	ErrNotFound = errors.New("requested resource not found")

	// ErrConflict indicates a concurrent modification lost the race after
	// the store exhausted its transaction retries. The operation persisted
	// nothing and is safe to resubmit.
	ErrConflict = errors.New("resource conflict")

	// ErrProfileNotDue is returned when a generation attempt finds the
	// profile no longer due or no longer active under the row lock.
	ErrProfileNotDue = errors.New("recurrence profile is not due")
)

// ValidationError rejects malformed input before any persistence happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Field + ": " + e.Reason
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
