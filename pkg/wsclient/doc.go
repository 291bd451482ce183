// Package wsclient provides an embeddable, self-healing streaming session.
//
// A Session owns an event loop, a reconnecting client and the plugins
// attached to it. Application code talks to it from any goroutine; every
// call is posted onto the loop.
//
// # Basic Usage
//
//	cfg := wsclient.Config{
//	    BaseURL:   "wss://play.example.com",
//	    Namespace: "versus",
//	}
//
//	s, err := wsclient.New(cfg, wsclient.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := s.Start(ctx); err != nil {
//	    return err
//	}
//	defer s.Stop()
//
//	s.Subscribe(events.Exact(events.TypeReady), func(payload any, name string) {
//	    ready := payload.(*events.ReadyEvent)
//	    fmt.Println("joined, recovery code", ready.RecoveryCode)
//	})
//	s.Init("")
//
// # Configuration
//
// Create a [Config] with at minimum BaseURL. All other fields have defaults
// set via [Config.SetDefaults].
//
// # Event Handling
//
// Domain events and connection notifications are published on the session
// bus; see package events for the names. Runtime state changes go to an
// [EventHandler] passed with [WithEventHandler].
//
// # Lifecycle States
//
// A Session can be in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping], or [StateCrashed]. Use [Session.Status]
// to query the current state.
//
// # Plugins
//
//	import "github.com/irothenbaum/websocket-client/plugins/metrics"
//
//	s, err := wsclient.New(cfg,
//	    metrics.WithMetrics(metrics.DefaultConfig()),
//	)
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// Use [ModuleVersions] to get versions of all sub-modules.
package wsclient
