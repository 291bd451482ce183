package events

import "time"

// Event is a domain event published by the client.
type Event interface {
	EventType() string
	// EventTimestamp is epoch milliseconds.
	EventTimestamp() int64
	SetTimestamp(ms int64)
}

// Base carries the fields every event has.
type Base struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func newBase(typ string, now time.Time) Base {
	return Base{Type: typ, Timestamp: now.UnixMilli()}
}

func (b *Base) EventType() string     { return b.Type }
func (b *Base) EventTimestamp() int64 { return b.Timestamp }
func (b *Base) SetTimestamp(ms int64) { b.Timestamp = ms }

// InitEvent announces a session handshake. It is both sent to the server
// and published locally.
type InitEvent struct {
	Base
	ConnectCode string `json:"connectCode,omitempty"`
}

func NewInitEvent(connectCode string, now time.Time) *InitEvent {
	return &InitEvent{Base: newBase(TypeInit, now), ConnectCode: connectCode}
}

// WaitingEvent reports that the server is waiting for a peer to join.
type WaitingEvent struct {
	Base
	ConnectCode  string `json:"connectCode,omitempty"`
	RecoveryCode string `json:"recoveryCode,omitempty"`
}

func NewWaitingEvent(connectCode, recoveryCode string, now time.Time) *WaitingEvent {
	return &WaitingEvent{Base: newBase(TypeWaiting, now), ConnectCode: connectCode, RecoveryCode: recoveryCode}
}

// ReadyEvent carries the recovery code the server issued for the session.
type ReadyEvent struct {
	Base
	RecoveryCode string `json:"recoveryCode"`
}

func NewReadyEvent(recoveryCode string, now time.Time) *ReadyEvent {
	return &ReadyEvent{Base: newBase(TypeReady, now), RecoveryCode: recoveryCode}
}

// LostEvent is published once per failure streak.
type LostEvent struct {
	Base
	ConnectCode string `json:"connectCode,omitempty"`
}

func NewLostEvent(connectCode string, now time.Time) *LostEvent {
	return &LostEvent{Base: newBase(TypeLost, now), ConnectCode: connectCode}
}

// FoundEvent is published when a reconnect attempt opens.
type FoundEvent struct {
	Base
}

func NewFoundEvent(now time.Time) *FoundEvent {
	return &FoundEvent{Base: newBase(TypeFound, now)}
}

// CloseEvent is published when the session is closed locally.
type CloseEvent struct {
	Base
}

func NewCloseEvent(now time.Time) *CloseEvent {
	return &CloseEvent{Base: newBase(TypeClose, now)}
}
