package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no document matches the requested key.
var ErrNotFound = errors.New("not found")

// Error wraps a failure reported by the storage backend.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
