package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (WSCLIENT_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", os.Getenv("WSCLIENT_URL"), &cfg.URL)
	s.setString("namespace", os.Getenv("WSCLIENT_NAMESPACE"), &cfg.Namespace)
	s.setString("code", os.Getenv("WSCLIENT_CODE"), &cfg.Code)
	s.setString("token-placement", os.Getenv("WSCLIENT_TOKEN_PLACEMENT"), &cfg.Token)
	s.setString("log-level", os.Getenv("WSCLIENT_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("metrics-addr", os.Getenv("WSCLIENT_METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setDuration("heartbeat", os.Getenv("WSCLIENT_HEARTBEAT"), &cfg.Heartbeat); err != nil {
		return err
	}
	if err := s.setDuration("flush-interval", os.Getenv("WSCLIENT_FLUSH_INTERVAL"), &cfg.FlushInterval); err != nil {
		return err
	}
	if err := s.setDuration("reconnect-floor", os.Getenv("WSCLIENT_RECONNECT_FLOOR"), &cfg.ReconnectFloor); err != nil {
		return err
	}
	if err := s.setDuration("reconnect-ceiling", os.Getenv("WSCLIENT_RECONNECT_CEILING"), &cfg.ReconnectCeiling); err != nil {
		return err
	}
	if err := s.setDuration("handshake-timeout", os.Getenv("WSCLIENT_HANDSHAKE_TIMEOUT"), &cfg.HandshakeTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("max-missed", os.Getenv("WSCLIENT_MAX_MISSED"), &cfg.MaxMissed); err != nil {
		return err
	}
	if err := s.setIntFromString("read-limit", os.Getenv("WSCLIENT_READ_LIMIT"), &cfg.ReadLimit); err != nil {
		return err
	}

	s.setBoolFromString("watch-config", os.Getenv("WSCLIENT_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
