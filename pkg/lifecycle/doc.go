// Package lifecycle provides the runtime state machine and retry backoff
// shared by the session runtime and the reconnection orchestrator.
//
// # Usage
//
//	manager := lifecycle.NewManager(logger, emitter)
//	if !manager.CanStart() {
//	    return lifecycle.ErrAlreadyRunning
//	}
//	if err := manager.TransitionTo(lifecycle.StateStarting, "Start() called"); err != nil {
//	    return err
//	}
//
// # State Machine
//
// Valid state transitions:
//   - Stopped -> Starting
//   - Starting -> Running, Stopping, Crashed
//   - Running -> Stopping, Crashed
//   - Stopping -> Stopped, Crashed
//   - Crashed -> Starting, Stopping
//
// # Backoff
//
// Backoff doubles from a floor up to a ceiling on every Next and drops back
// to the floor on Reset:
//
//	b := lifecycle.NewBackoff(time.Second, time.Minute)
//	b.Next() // 1s, tracked delay now 2s
//	b.Next() // 2s, tracked delay now 4s
//	b.Reset()
//
// # Version
//
// Current version: 2.0.0
// Minimum compatible version: 2.0.0
package lifecycle
