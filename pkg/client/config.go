package client

import (
	"fmt"
	"time"

	"github.com/irothenbaum/websocket-client/pkg/events"
	"github.com/irothenbaum/websocket-client/pkg/heartbeat"
	"github.com/irothenbaum/websocket-client/pkg/log"
)

const (
	DefaultReconnectFloor   = time.Second
	DefaultReconnectCeiling = time.Minute
)

// Config holds session-level timing.
type Config struct {
	// ReconnectFloor is the first reconnect delay after a failure.
	ReconnectFloor time.Duration

	// ReconnectCeiling caps the doubling reconnect delay.
	ReconnectCeiling time.Duration

	Heartbeat heartbeat.Config
}

// DefaultConfig returns the protocol defaults.
func DefaultConfig() Config {
	return Config{
		ReconnectFloor:   DefaultReconnectFloor,
		ReconnectCeiling: DefaultReconnectCeiling,
		Heartbeat:        heartbeat.DefaultConfig(),
	}
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.ReconnectFloor <= 0 {
		c.ReconnectFloor = DefaultReconnectFloor
	}
	if c.ReconnectCeiling <= 0 {
		c.ReconnectCeiling = DefaultReconnectCeiling
	}
	c.Heartbeat.SetDefaults()
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.ReconnectCeiling < c.ReconnectFloor {
		return fmt.Errorf("reconnect ceiling %s is below floor %s", c.ReconnectCeiling, c.ReconnectFloor)
	}
	if c.Heartbeat.HeartbeatType == "" {
		return fmt.Errorf("heartbeat type is required")
	}
	if c.Heartbeat.MaxMissed < 1 {
		return fmt.Errorf("max missed heartbeats must be at least 1, got %d", c.Heartbeat.MaxMissed)
	}
	return nil
}

// Option configures a Client.
type Option func(*options)

type options struct {
	config     Config
	policy     AddressPolicy
	translator Translator
	bus        *events.Bus
	logger     log.Logger
}

// WithConfig sets timing. Zero fields take their defaults.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithAddressPolicy sets how connect and reconnect addresses are built.
func WithAddressPolicy(p AddressPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithTranslator handles envelope types outside the connection protocol.
func WithTranslator(t Translator) Option {
	return func(o *options) {
		o.translator = t
	}
}

// WithBus publishes onto an existing bus instead of a private one.
func WithBus(b *events.Bus) Option {
	return func(o *options) {
		o.bus = b
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
