package cliconfig

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/irothenbaum/websocket-client/pkg/client"
	"github.com/irothenbaum/websocket-client/pkg/heartbeat"
	"github.com/irothenbaum/websocket-client/pkg/wsclient"
)

// Config holds CLI configuration for wsclient.
type Config struct {
	URL       string
	Namespace string
	Code      string
	Token     string // token placement: append or replace

	Heartbeat        time.Duration
	MaxMissed        int
	FlushInterval    time.Duration
	ReconnectFloor   time.Duration
	ReconnectCeiling time.Duration
	HandshakeTimeout time.Duration
	ReadLimit        int

	LogLevel    string
	MetricsAddr string
	WatchConfig bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Token:            client.TokenAppend.String(),
		Heartbeat:        heartbeat.DefaultInterval,
		MaxMissed:        heartbeat.DefaultMaxMissed,
		FlushInterval:    heartbeat.DefaultFlushInterval,
		ReconnectFloor:   client.DefaultReconnectFloor,
		ReconnectCeiling: client.DefaultReconnectCeiling,
		HandshakeTimeout: 10 * time.Second,
		LogLevel:         "info",
	}
}

// Validate checks the configuration for errors and normalizes the URL.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	c.URL = strings.TrimRight(c.URL, "/")
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("url must use ws:// or wss://, got %q", c.URL)
	}
	c.Namespace = strings.Trim(c.Namespace, "/")

	if c.Heartbeat <= 0 {
		return fmt.Errorf("heartbeat interval must be positive")
	}
	if c.ReconnectFloor <= 0 {
		return fmt.Errorf("reconnect floor must be positive")
	}
	if c.ReconnectCeiling < c.ReconnectFloor {
		return fmt.Errorf("reconnect ceiling %s is below floor %s", c.ReconnectCeiling, c.ReconnectFloor)
	}
	if _, ok := client.ParseTokenPlacement(c.Token); !ok {
		return fmt.Errorf("token placement must be append or replace, got %q", c.Token)
	}
	return nil
}

// Session converts the CLI configuration to the library configuration.
func (c Config) Session() wsclient.Config {
	return wsclient.Config{
		BaseURL:             c.URL,
		Namespace:           c.Namespace,
		TokenPlacement:      c.Token,
		HeartbeatInterval:   c.Heartbeat,
		MaxMissedHeartbeats: c.MaxMissed,
		FlushInterval:       c.FlushInterval,
		ReconnectFloor:      c.ReconnectFloor,
		ReconnectCeiling:    c.ReconnectCeiling,
		HandshakeTimeout:    c.HandshakeTimeout,
		ReadLimit:           int64(c.ReadLimit),
	}
}

// Target is the part of the configuration that selects a session. A change
// to it means the running session must be re-initialized.
type Target struct {
	URL       string
	Namespace string
	Code      string
}

// Target returns the session-selecting fields.
func (c Config) Target() Target {
	return Target{URL: c.URL, Namespace: c.Namespace, Code: c.Code}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses an environment value. Non-positive values are ignored.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// AddressPolicy returns the address policy for the configured target.
func (c Config) AddressPolicy() client.DefaultAddressPolicy {
	placement, _ := client.ParseTokenPlacement(c.Token)
	return client.DefaultAddressPolicy{
		Base:      c.URL,
		Namespace: c.Namespace,
		Token:     placement,
	}
}
