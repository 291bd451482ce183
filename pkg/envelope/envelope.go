package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the unit sent over the wire.
type Envelope struct {
	Type string `json:"type"`

	// Payload is kept raw so consumers can unmarshal into their own types.
	Payload json.RawMessage `json:"payload,omitempty"`

	// TimestampSent is the sender's wall clock in epoch milliseconds.
	TimestampSent int64 `json:"timestampSent"`

	// TimestampReceived is set by Decode; zero means not received.
	TimestampReceived int64 `json:"-"`
}

// New builds an outbound envelope stamped with now.
// A nil payload is omitted from the frame.
func New(typ string, payload any, now time.Time) (Envelope, error) {
	env := Envelope{Type: typ, TimestampSent: now.UnixMilli()}
	if payload == nil {
		return env, nil
	}
	if raw, ok := payload.(json.RawMessage); ok {
		env.Payload = raw
		return env, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("envelope: marshal %s payload: %w", typ, err)
	}
	if bytes.Equal(raw, []byte("null")) {
		return env, nil
	}
	env.Payload = raw
	return env, nil
}

// Encode serializes env as a single text frame.
func Encode(env Envelope) ([]byte, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("envelope: encode %s: %w", env.Type, err)
	}
	return b, nil
}

// Decode parses a received frame and stamps TimestampReceived with now.
func Decode(frame []byte, now time.Time) (Envelope, error) {
	var env Envelope
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Envelope{}, &MalformedError{Frame: frame, Err: ErrNotObject}
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Envelope{}, &MalformedError{Frame: frame, Err: err}
	}
	if bytes.Equal(env.Payload, []byte("null")) {
		env.Payload = nil
	}
	env.TimestampReceived = now.UnixMilli()
	return env, nil
}

// Unmarshal decodes the payload into v.
// It returns ErrNoPayload when the envelope carried none.
func (e Envelope) Unmarshal(v any) error {
	if len(e.Payload) == 0 {
		return ErrNoPayload
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("envelope: decode %s payload: %w", e.Type, err)
	}
	return nil
}

// SentAt returns TimestampSent as a time.
func (e Envelope) SentAt() time.Time {
	return time.UnixMilli(e.TimestampSent)
}

// ReceivedAt returns TimestampReceived as a time, and false for outbound envelopes.
func (e Envelope) ReceivedAt() (time.Time, bool) {
	if e.TimestampReceived == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(e.TimestampReceived), true
}
