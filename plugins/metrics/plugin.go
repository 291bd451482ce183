// Package metrics exports session activity as Prometheus metrics.
//
// Metrics collected:
//   - wsclient_events_total: connection:* events by type
//   - wsclient_frames_total: envelopes sent and received by direction
//   - wsclient_transport_errors_total: connection errors by fatality
//   - wsclient_pulse: 1 while the current connection has seen a message
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/irothenbaum/websocket-client/pkg/events"
	"github.com/irothenbaum/websocket-client/pkg/heartbeat"
	"github.com/irothenbaum/websocket-client/pkg/wsclient"
)

// Frame directions.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Config configures the metrics plugin.
type Config struct {
	// Namespace is the metrics namespace (default: "wsclient").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry receives the collectors and backs Handler.
	// Default: a fresh registry per plugin.
	Registry *prometheus.Registry
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() Config {
	return Config{Namespace: "wsclient"}
}

// Plugin records bus traffic into Prometheus collectors.
type Plugin struct {
	registry *prometheus.Registry

	eventsTotal     *prometheus.CounterVec
	framesTotal     *prometheus.CounterVec
	transportErrors *prometheus.CounterVec
	pulse           prometheus.Gauge

	mu   sync.Mutex
	bus  *events.Bus
	subs []events.SubscriptionID
}

// New creates the plugin and registers its collectors.
func New(cfg Config) *Plugin {
	if cfg.Namespace == "" {
		cfg.Namespace = "wsclient"
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	factory := promauto.With(cfg.Registry)

	return &Plugin{
		registry: cfg.Registry,

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "events_total",
			Help:        "Total number of connection events published",
			ConstLabels: cfg.ConstLabels,
		}, []string{"type"}),

		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "frames_total",
			Help:        "Total number of envelopes sent or received",
			ConstLabels: cfg.ConstLabels,
		}, []string{"direction"}),

		transportErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "transport_errors_total",
			Help:        "Total connection errors, split by whether they forced a reconnect",
			ConstLabels: cfg.ConstLabels,
		}, []string{"fatal"}),

		pulse: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "pulse",
			Help:        "1 while the current connection has received a message",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// WithMetrics returns a wsclient Option that registers a metrics plugin.
// Use New plus wsclient.WithPlugin when Handler is needed.
func WithMetrics(cfg Config) wsclient.Option {
	return wsclient.WithPlugin(New(cfg))
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "metrics"
}

// Initialize subscribes to the session bus.
func (p *Plugin) Initialize(ctx context.Context, cfg wsclient.PluginConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bus = cfg.Bus
	p.subs = append(p.subs,
		cfg.Bus.Subscribe(events.MustPattern(`^connection:`), p.onConnectionEvent),
		cfg.Bus.Subscribe(events.MustPattern(`^heartbeat:`), p.onNotification),
	)
	return nil
}

// Shutdown removes the subscriptions. Collected values are kept.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, id := range p.subs {
		p.bus.Unsubscribe(id)
	}
	p.subs = nil
	p.pulse.Set(0)
	return nil
}

// Handler serves the plugin's registry in the Prometheus text format.
func (p *Plugin) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry returns the registry the collectors live in.
func (p *Plugin) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Plugin) onConnectionEvent(payload any, name string) {
	p.eventsTotal.WithLabelValues(name).Inc()
	switch name {
	case events.TypeLost, events.TypeClose:
		p.pulse.Set(0)
	}
}

func (p *Plugin) onNotification(payload any, name string) {
	switch name {
	case events.NotifyMessageSent:
		p.framesTotal.WithLabelValues(DirectionOut).Inc()
	case events.NotifyMessageReceived:
		p.framesTotal.WithLabelValues(DirectionIn).Inc()
		p.pulse.Set(1)
	case events.NotifyClosed:
		p.pulse.Set(0)
	case events.NotifyError:
		err, _ := payload.(error)
		p.transportErrors.WithLabelValues(strconv.FormatBool(heartbeat.IsFatal(err))).Inc()
	}
}

// Ensure Plugin implements wsclient.Plugin.
var _ wsclient.Plugin = (*Plugin)(nil)
