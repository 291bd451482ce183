package wsclient

import (
	"github.com/irothenbaum/websocket-client/pkg/client"
	"github.com/irothenbaum/websocket-client/pkg/log"
	"github.com/irothenbaum/websocket-client/pkg/transport"
)

// Option configures optional behavior of a Session.
type Option func(*options)

type options struct {
	logger       log.Logger
	dialer       transport.Dialer
	eventHandler EventHandler
	plugins      []Plugin
	translator   client.Translator
	policy       client.AddressPolicy
}

// WithLogger sets a logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDialer replaces the websocket transport, for example with an
// in-memory one in tests.
func WithDialer(d transport.Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithEventHandler sets a handler for runtime state changes.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the session starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithTranslator handles application-defined message types.
func WithTranslator(t client.Translator) Option {
	return func(o *options) {
		o.translator = t
	}
}

// WithAddressPolicy overrides the address policy derived from Config.
func WithAddressPolicy(p client.AddressPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}
