package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound indicates that identity resolution exhausted every
	// strategy.
	ErrUserNotFound = errors.New("user not found")

	// ErrPaymentNotFound indicates that no payment exists for a session id.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvalidCommand indicates that a command failed validation.
	ErrInvalidCommand = errors.New("invalid command")
)

// PersistenceError wraps a failed storage operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError returns a PersistenceError for op.
func NewPersistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// IsPersistenceError reports whether err wraps a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
