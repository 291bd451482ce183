package heartbeat

import (
	"time"

	"github.com/irothenbaum/websocket-client/pkg/events"
	"github.com/irothenbaum/websocket-client/pkg/log"
)

const (
	DefaultInterval      = time.Second
	DefaultMaxMissed     = 3
	DefaultFlushInterval = 50 * time.Millisecond
)

// Config controls heartbeat timing and queue polling.
type Config struct {
	// HeartbeatType is the envelope type sent and expected as heartbeat.
	HeartbeatType string

	Interval time.Duration

	// MaxMissed is the number of consecutive unanswered ticks that fail the
	// connection.
	MaxMissed int

	// FlushInterval is how often a non-empty queue checks whether the
	// transport has opened.
	FlushInterval time.Duration
}

// DefaultConfig returns the protocol defaults.
func DefaultConfig() Config {
	return Config{
		HeartbeatType: events.TypeHeartbeat,
		Interval:      DefaultInterval,
		MaxMissed:     DefaultMaxMissed,
		FlushInterval: DefaultFlushInterval,
	}
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.HeartbeatType == "" {
		c.HeartbeatType = events.TypeHeartbeat
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.MaxMissed <= 0 {
		c.MaxMissed = DefaultMaxMissed
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}
}

// Option configures a Conn.
type Option func(*options)

type options struct {
	observer Observer
	logger   log.Logger
	id       string
}

// WithObserver receives the connection's notifications.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// WithLogger sets the logger. Records carry conn_id and address fields.
func WithLogger(l log.Logger) Option {
	return func(opts *options) {
		opts.logger = l
	}
}

// WithID overrides the generated connection ID.
func WithID(id string) Option {
	return func(opts *options) {
		opts.id = id
	}
}
