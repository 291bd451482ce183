package wsclient

import (
	"errors"

	"github.com/irothenbaum/websocket-client/pkg/lifecycle"
)

var (
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("wsclient: invalid config")

	// ErrAlreadyRunning is returned by Start on a running session.
	ErrAlreadyRunning = lifecycle.ErrAlreadyRunning

	// ErrNotRunning is returned by Stop, and by calls that need the loop,
	// when the session is not running.
	ErrNotRunning = lifecycle.ErrNotRunning

	// ErrShutdownTimeout is returned by Stop when the loop did not exit in time.
	ErrShutdownTimeout = lifecycle.ErrShutdownTimeout
)
