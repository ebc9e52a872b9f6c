package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned when an operation needs a stored session
	// and none exists.
	ErrNoSession = errors.New("provider: no active session")

	// ErrNotFound is returned by single-row queries that match nothing.
	ErrNotFound = errors.New("provider: row not found")

	// ErrConflict is returned when an insert violates a unique
	// constraint. Callers treat it as "already exists" and re-fetch.
	ErrConflict = errors.New("provider: row conflict")
)

// Error is a failure reported by the provider inside a response
// envelope or as a non-2xx status.
type Error struct {
	Status  int    `json:"code"`
	Message string `json:"error"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider: %s (status %d)", e.Message, e.Status)
}
