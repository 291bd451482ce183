package events

// Protocol message types. Heartbeat, init, waiting and ready travel on the
// wire; lost, found and close are synthesized locally.
const (
	TypeHeartbeat = "connection:heartbeat"
	TypeInit      = "connection:init"
	TypeReady     = "connection:ready"
	TypeLost      = "connection:lost"
	TypeFound     = "connection:found"
	TypeWaiting   = "connection:waiting"
	TypeClose     = "connection:close"
)

// Connection notifications re-published on the bus. The payload of
// MessageSent and MessageReceived is the envelope.Envelope involved, the
// payload of Error is the error, the others carry the connection ID.
const (
	NotifyMessageSent     = "heartbeat:message-sent"
	NotifyMessageReceived = "heartbeat:message-received"
	NotifyReopened        = "heartbeat:reopened"
	NotifyClosed          = "heartbeat:closed"
	NotifyError           = "heartbeat:error"
)
