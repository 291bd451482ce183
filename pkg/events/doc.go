// Package events provides the synchronous event bus the client dispatches
// through, together with the connection protocol vocabulary and the domain
// event values published on it.
//
// Subscriptions match either an exact event name or a regular expression:
//
//	bus := events.NewBus()
//	bus.On(events.TypeReady, func(payload any, name string) {
//	    ready := payload.(*events.ReadyEvent)
//	    fmt.Println("session ready", ready.RecoveryCode)
//	})
//	id := bus.Subscribe(events.MustPattern(`^connection:`), logEvent)
//	defer bus.Unsubscribe(id)
//
// Publish runs handlers on the publishing goroutine, in subscription
// order. Handlers may subscribe or unsubscribe while being dispatched;
// such changes take effect from the next Publish.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package events
