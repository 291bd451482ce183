package envelope

import (
	"errors"
	"fmt"
)

var (
	// ErrNotObject is wrapped by MalformedError when a frame is not a JSON object.
	ErrNotObject = errors.New("envelope: frame is not a JSON object")

	// ErrNoPayload is returned by Unmarshal for envelopes without a payload.
	ErrNoPayload = errors.New("envelope: no payload")
)

// MalformedError reports a received frame that could not be decoded.
type MalformedError struct {
	Frame []byte
	Err   error
}

func (e *MalformedError) Error() string {
	const max = 64
	frame := e.Frame
	suffix := ""
	if len(frame) > max {
		frame = frame[:max]
		suffix = "..."
	}
	return fmt.Sprintf("envelope: malformed frame %q%s: %v", frame, suffix, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }
