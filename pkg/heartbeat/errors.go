package heartbeat

import (
	"errors"
	"fmt"
	"time"

	"github.com/irothenbaum/websocket-client/pkg/transport"
)

// ErrClosed rejects a WaitForConnection future whose Conn closed before
// ever opening.
var ErrClosed = errors.New("heartbeat: connection closed")

// TimeoutError reports that too many heartbeats went unanswered.
type TimeoutError struct {
	Missed   int
	Interval time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("heartbeat: %d consecutive heartbeats missed (interval %s)", e.Missed, e.Interval)
}

func (e *TimeoutError) Is(target error) bool {
	return target == transport.ErrTransport
}

// LostError reports that the transport itself is gone.
type LostError struct {
	Err error
}

func (e *LostError) Error() string {
	return fmt.Sprintf("heartbeat: %v", e.Err)
}

func (e *LostError) Unwrap() error { return e.Err }

func (e *LostError) Is(target error) bool {
	return target == transport.ErrTransport
}

// IsFatal reports whether err calls for re-establishing the session.
func IsFatal(err error) bool {
	var timeout *TimeoutError
	var lost *LostError
	return errors.As(err, &timeout) || errors.As(err, &lost)
}
