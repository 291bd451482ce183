package wsclient

import (
	"context"

	"github.com/irothenbaum/websocket-client/pkg/events"
	"github.com/irothenbaum/websocket-client/pkg/log"
)

// Plugin extends a Session. Plugins are initialized in registration order
// when the session starts and shut down in reverse order when it stops.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// PluginConfig is what a plugin gets to work with.
type PluginConfig struct {
	// Bus carries every domain event and connection notification.
	Bus *events.Bus

	Logger    log.Logger
	BaseURL   string
	Namespace string
}
