// Package transport defines the port between the heartbeat connection and a
// concrete text-frame transport.
//
// A Dialer starts connecting and returns immediately; progress is reported
// through the Handler, possibly from another goroutine:
//
//	t := dialer.Dial("wss://example.com/ns/create", transport.Handler{
//	    OnOpen:    func() { ... },
//	    OnMessage: func(frame []byte) { ... },
//	    OnError:   func(err error) { ... },
//	})
//
// Errors reported through OnError that wrap ErrConnectionLost mean the
// transport is gone and the session should be re-established; any other
// error is informational.
//
// Adapters live in sub-packages: websocket (gorilla/websocket) and memory
// (in-process, for tests).
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package transport
