// Package errutil declares the sentinel errors shared across packages.
// Callers wrap them with github.com/pkg/errors so a stack is attached while
// errors.Is still matches the sentinel.
package errutil

import "errors"

// InternalError is a comparable sentinel error value.
type InternalError struct {
	err error
}

func NewInternalError(msg string) InternalError {
	return InternalError{err: errors.New(msg)}
}

func (e InternalError) Error() string {
	return e.err.Error()
}
