package configwatcher

import "github.com/irothenbaum/websocket-client/pkg/wsclient"

// WithConfigWatcher returns a wsclient Option that watches cfg.Path and
// calls cfg.OnChange when it changes.
//
// Usage:
//
//	s, err := wsclient.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:     "/home/me/.wsclient/config.toml",
//	        OnChange: reload,
//	    }),
//	)
func WithConfigWatcher(cfg Config) wsclient.Option {
	return wsclient.WithPlugin(New(cfg))
}
