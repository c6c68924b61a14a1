package render

import (
	"errors"
	"fmt"
)

// UnavailableError means the backend could not give us a drawing surface
// (no adapter, no device, no window, no terminal). It is never retried.
type UnavailableError struct {
	Backend string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("render surface %q unavailable: %v", e.Backend, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Unavailable wraps err as an *UnavailableError for backend.
func Unavailable(backend string, err error) error {
	return &UnavailableError{Backend: backend, Err: err}
}

// ErrUnknownHandle is returned when drawing or disposing a handle the surface
// never issued, or one already disposed.
var ErrUnknownHandle = errors.New("unknown render handle")
