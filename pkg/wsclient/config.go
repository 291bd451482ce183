package wsclient

import (
	"fmt"
	"net/url"
	"time"

	"github.com/irothenbaum/websocket-client/pkg/client"
	"github.com/irothenbaum/websocket-client/pkg/events"
	"github.com/irothenbaum/websocket-client/pkg/heartbeat"
)

// Config holds the settings of a Session.
type Config struct {
	// BaseURL is the server origin, for example "wss://play.example.com".
	// Required.
	BaseURL string

	// Namespace is the path segment sessions live under.
	Namespace string

	// TokenPlacement is "append" (default) or "replace"; see
	// client.TokenPlacement.
	TokenPlacement string

	// HeartbeatType is the envelope type used for heartbeats.
	// Default: connection:heartbeat
	HeartbeatType string

	// HeartbeatInterval is the time between heartbeats.
	// Default: 1 second
	HeartbeatInterval time.Duration

	// MaxMissedHeartbeats fails the connection after this many unanswered
	// heartbeats in a row.
	// Default: 3
	MaxMissedHeartbeats int

	// FlushInterval is how often queued messages check for an open transport.
	// Default: 50 milliseconds
	FlushInterval time.Duration

	// ReconnectFloor is the first reconnect delay.
	// Default: 1 second
	ReconnectFloor time.Duration

	// ReconnectCeiling caps the reconnect delay.
	// Default: 1 minute
	ReconnectCeiling time.Duration

	// HandshakeTimeout bounds the websocket opening handshake.
	// Default: 10 seconds
	HandshakeTimeout time.Duration

	// WriteTimeout bounds a single frame write.
	// Default: 10 seconds
	WriteTimeout time.Duration

	// ReadLimit caps inbound frame size in bytes. Zero means no limit.
	ReadLimit int64
}

// SetDefaults fills zero fields with their defaults.
func (c *Config) SetDefaults() {
	if c.HeartbeatType == "" {
		c.HeartbeatType = events.TypeHeartbeat
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = heartbeat.DefaultInterval
	}
	if c.MaxMissedHeartbeats <= 0 {
		c.MaxMissedHeartbeats = heartbeat.DefaultMaxMissed
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = heartbeat.DefaultFlushInterval
	}
	if c.ReconnectFloor <= 0 {
		c.ReconnectFloor = client.DefaultReconnectFloor
	}
	if c.ReconnectCeiling <= 0 {
		c.ReconnectCeiling = client.DefaultReconnectCeiling
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: base URL: %v", ErrInvalidConfig, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: base URL scheme must be ws or wss, got %q", ErrInvalidConfig, u.Scheme)
	}
	if _, ok := client.ParseTokenPlacement(c.TokenPlacement); !ok {
		return fmt.Errorf("%w: unknown token placement %q", ErrInvalidConfig, c.TokenPlacement)
	}
	if c.ReconnectCeiling < c.ReconnectFloor {
		return fmt.Errorf("%w: reconnect ceiling %s is below floor %s", ErrInvalidConfig, c.ReconnectCeiling, c.ReconnectFloor)
	}
	if c.FlushInterval >= c.HeartbeatInterval {
		return fmt.Errorf("%w: flush interval %s must be shorter than heartbeat interval %s", ErrInvalidConfig, c.FlushInterval, c.HeartbeatInterval)
	}
	if c.ReadLimit < 0 {
		return fmt.Errorf("%w: read limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) clientConfig() client.Config {
	return client.Config{
		ReconnectFloor:   c.ReconnectFloor,
		ReconnectCeiling: c.ReconnectCeiling,
		Heartbeat: heartbeat.Config{
			HeartbeatType: c.HeartbeatType,
			Interval:      c.HeartbeatInterval,
			MaxMissed:     c.MaxMissedHeartbeats,
			FlushInterval: c.FlushInterval,
		},
	}
}

func (c *Config) addressPolicy() client.AddressPolicy {
	placement, _ := client.ParseTokenPlacement(c.TokenPlacement)
	return client.DefaultAddressPolicy{
		Base:      c.BaseURL,
		Namespace: c.Namespace,
		Token:     placement,
	}
}
