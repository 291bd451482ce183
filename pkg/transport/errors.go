package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport classifies every error raised by a transport.
	ErrTransport = errors.New("transport error")

	// ErrConnectionLost marks an error after which the transport is unusable.
	ErrConnectionLost = errors.New("transport: connection lost")

	// ErrNotOpen is returned by Send on a transport that is not open.
	ErrNotOpen = errors.New("transport: not open")
)

// Error is a failure reported by a transport adapter.
type Error struct {
	Op  string
	Err error
}

// NewError wraps err as a transport failure of op.
func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// Lost wraps err as a fatal connection loss during op.
func Lost(op string, err error) *Error {
	if err == nil {
		return &Error{Op: op, Err: ErrConnectionLost}
	}
	return &Error{Op: op, Err: fmt.Errorf("%w: %w", ErrConnectionLost, err)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrTransport
}

// IsConnectionLost reports whether err means the transport is gone.
func IsConnectionLost(err error) bool {
	return errors.Is(err, ErrConnectionLost)
}
