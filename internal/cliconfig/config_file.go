package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	URL              string `toml:"url"`
	Namespace        string `toml:"namespace"`
	Code             string `toml:"code"`
	Token            string `toml:"token_placement"`
	Heartbeat        string `toml:"heartbeat"`
	MaxMissed        int    `toml:"max_missed"`
	FlushInterval    string `toml:"flush_interval"`
	ReconnectFloor   string `toml:"reconnect_floor"`
	ReconnectCeiling string `toml:"reconnect_ceiling"`
	HandshakeTimeout string `toml:"handshake_timeout"`
	ReadLimit        int    `toml:"read_limit"`
	LogLevel         string `toml:"log_level"`
	MetricsAddr      string `toml:"metrics_addr"`
	WatchConfig      *bool  `toml:"watch_config"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.wsclient/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".wsclient", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", fc.URL, &cfg.URL)
	s.setString("namespace", fc.Namespace, &cfg.Namespace)
	s.setString("code", fc.Code, &cfg.Code)
	s.setString("token-placement", fc.Token, &cfg.Token)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	if err := s.setDuration("heartbeat", fc.Heartbeat, &cfg.Heartbeat); err != nil {
		return err
	}
	if err := s.setDuration("flush-interval", fc.FlushInterval, &cfg.FlushInterval); err != nil {
		return err
	}
	if err := s.setDuration("reconnect-floor", fc.ReconnectFloor, &cfg.ReconnectFloor); err != nil {
		return err
	}
	if err := s.setDuration("reconnect-ceiling", fc.ReconnectCeiling, &cfg.ReconnectCeiling); err != nil {
		return err
	}
	if err := s.setDuration("handshake-timeout", fc.HandshakeTimeout, &cfg.HandshakeTimeout); err != nil {
		return err
	}

	s.setInt("max-missed", fc.MaxMissed, &cfg.MaxMissed)
	s.setInt("read-limit", fc.ReadLimit, &cfg.ReadLimit)

	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
