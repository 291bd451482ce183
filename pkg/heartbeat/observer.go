package heartbeat

import "github.com/irothenbaum/websocket-client/pkg/envelope"

// Observer receives Conn notifications on the scheduler loop.
type Observer interface {
	OnMessageSent(env envelope.Envelope)
	OnMessageReceived(env envelope.Envelope)

	// OnReopened fires when a non-empty queue starts draining.
	OnReopened()

	// OnClosed fires once, when the Conn closes.
	OnClosed()

	// OnError fires before the Conn closes because of err.
	OnError(err error)
}

// BaseObserver implements Observer with no-ops. Embed it to override only
// the notifications of interest.
type BaseObserver struct{}

func (BaseObserver) OnMessageSent(envelope.Envelope)     {}
func (BaseObserver) OnMessageReceived(envelope.Envelope) {}
func (BaseObserver) OnReopened()                         {}
func (BaseObserver) OnClosed()                           {}
func (BaseObserver) OnError(error)                       {}
