// Package service implements the stamp workflow and the account and
// history operations on top of narrow repository interfaces.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/daily-stamp/internal/repository"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// PIN.  Callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or PIN")

	// ErrUsernameTaken is returned by Register for a duplicate username.
	ErrUsernameTaken = repository.ErrUsernameTaken

	// ErrUserNotFound is returned by history lookups for unknown users.
	ErrUserNotFound = repository.ErrUserNotFound

	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

// PersistenceError reports a failed read or write against the store.  Op
// names the step that failed; the underlying error message is passed
// through as the detail.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

// Detail is the message surfaced to clients.
func (e *PersistenceError) Detail() string { return e.Err.Error() }

func (*PersistenceError) isOutcome() {}

func persistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
