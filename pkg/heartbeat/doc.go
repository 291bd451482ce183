// Package heartbeat wraps one physical transport with liveness detection
// and outbound queueing.
//
// A Conn sends a heartbeat frame every Interval while open and counts the
// ticks that pass without a heartbeat coming back. When MaxMissed ticks in
// a row go unanswered the connection fails with a *TimeoutError and
// closes. Messages sent while the transport is not open are queued and
// flushed, in order, once it opens.
//
// All Conn methods must be called on the Scheduler the Conn was dialed
// with; transport callbacks are posted onto it.
//
//	conn := heartbeat.Dial(dialer, address, loop, heartbeat.DefaultConfig(),
//	    heartbeat.WithObserver(obs),
//	    heartbeat.WithLogger(logger),
//	)
//	conn.WaitForConnection().Then(func(err error) {
//	    if err == nil {
//	        conn.Send("connection:init", nil)
//	    }
//	})
//
// # Queue flushing
//
// The queue drains through a small state machine:
//
//	Idle -> Waiting     message queued while not open
//	Waiting -> Draining transport observed open (open callback or poll)
//	Draining -> Idle    queue empty
//	Draining -> Retrying transmit failed or transport stopped being open
//	Retrying -> Draining transport observed open again
//
// A failed transmit leaves the message at the head of the queue, so
// delivery order never changes.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package heartbeat
