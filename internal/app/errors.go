package app

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning is returned when Run is called twice.
var ErrAlreadyRunning = errors.New("app: already running")

// errQuit signals the event loop to exit. Never returned to callers.
var errQuit = errors.New("app: quit")

// InitError wraps a component initialization failure.
type InitError struct {
	Component string
	Err       error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("app: init %s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}
