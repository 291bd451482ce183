// Package wsclient provides a resilient streaming client over WebSocket.
//
// Example usage:
//
//	cfg := wsclient.Config{BaseURL: "wss://play.example.com", Namespace: "versus"}
//	s, err := wsclient.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Stop()
//	s.Init("")
//
// The types here are aliases of package pkg/wsclient; import that package
// directly for plugins and event handlers.
package wsclient

import (
	"github.com/irothenbaum/websocket-client/pkg/wsclient"
)

// Config holds the settings of a Session.
type Config = wsclient.Config

// Session is a running streaming session.
type Session = wsclient.Session

// Option configures a Session.
type Option = wsclient.Option

// New creates a Session in the stopped state.
func New(cfg Config, opts ...Option) (*Session, error) {
	return wsclient.New(cfg, opts...)
}

// WithLogger sets the session logger.
var WithLogger = wsclient.WithLogger
