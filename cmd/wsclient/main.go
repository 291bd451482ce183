package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/irothenbaum/websocket-client/internal/cliconfig"
	"github.com/irothenbaum/websocket-client/pkg/events"
	"github.com/irothenbaum/websocket-client/pkg/log"
	"github.com/irothenbaum/websocket-client/pkg/wsclient"
	"github.com/irothenbaum/websocket-client/plugins/configwatcher"
	"github.com/irothenbaum/websocket-client/plugins/metrics"
)

const longHelp = `Hold a session open against a websocket server and keep it alive.

The client sends heartbeats, reconnects with exponential backoff when the
connection drops, and rejoins the session with the server-issued recovery
token. Every event is logged. Lines read from stdin are sent as messages:

  <type> [json-payload]

Configure via file (~/.wsclient/config.toml), WSCLIENT_* environment
variables, or flags; later sources win.`

var exampleUsage = strings.TrimSpace(`
  wsclient --url wss://play.example.com --namespace versus
  wsclient --url ws://localhost:8080 --code ABCD --metrics-addr :9100
  echo 'chat:message {"text":"hi"}' | wsclient --config ./config.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	bootLog, _ := cliconfig.Logger("info")

	root := &cobra.Command{
		Use:          "wsclient",
		Short:        "Resilient websocket session client with heartbeat and reconnect",
		Long:         longHelp,
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			r := &resolver{base: cfg, path: cfgFile, changed: changed}
			return run(cmd.Context(), r)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.wsclient/config.toml)")
	root.Flags().StringVar(&cfg.URL, "url", cfg.URL, "server origin, ws:// or wss://")
	root.Flags().StringVar(&cfg.Namespace, "namespace", cfg.Namespace, "path segment sessions live under")
	root.Flags().StringVar(&cfg.Code, "code", cfg.Code, "connect code of a session to join (empty creates one)")
	root.Flags().StringVar(&cfg.Token, "token-placement", cfg.Token, "where the recovery token goes on reconnect: append or replace")

	root.Flags().DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "heartbeat interval")
	root.Flags().IntVar(&cfg.MaxMissed, "max-missed", cfg.MaxMissed, "unanswered heartbeats before the connection is dropped")
	root.Flags().DurationVar(&cfg.FlushInterval, "flush-interval", cfg.FlushInterval, "how often queued messages check for an open connection")
	root.Flags().DurationVar(&cfg.ReconnectFloor, "reconnect-floor", cfg.ReconnectFloor, "first reconnect delay")
	root.Flags().DurationVar(&cfg.ReconnectCeiling, "reconnect-ceiling", cfg.ReconnectCeiling, "maximum reconnect delay")
	root.Flags().DurationVar(&cfg.HandshakeTimeout, "handshake-timeout", cfg.HandshakeTimeout, "websocket handshake timeout")
	root.Flags().IntVar(&cfg.ReadLimit, "read-limit", cfg.ReadLimit, "maximum inbound frame size in bytes (0 = unlimited)")
	if err := root.Flags().MarkHidden("read-limit"); err != nil {
		bootLog.Info().Err(err).Msg("failed to hide read-limit flag")
	}

	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve /metrics and /healthz on this address")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "re-init the session when the config file changes its target")

	if err := root.Execute(); err != nil {
		bootLog.Error().Err(err).Msg("wsclient")
		os.Exit(1)
	}
}

// resolver layers file and environment configuration over the flag values.
type resolver struct {
	base    cliconfig.Config
	path    string
	changed map[string]bool
}

func (r *resolver) resolve() (cliconfig.Config, error) {
	cfg := r.base
	if r.path != "" && cliconfig.FileExists(r.path) {
		fc, err := cliconfig.LoadFileConfig(r.path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&cfg, fc, r.changed); err != nil {
			return cfg, err
		}
	}
	if err := cliconfig.ApplyEnvConfig(&cfg, r.changed); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(parent context.Context, r *resolver) error {
	cfg, err := r.resolve()
	if err != nil {
		return err
	}

	logger, err := cliconfig.Logger(cfg.LogLevel)
	if err != nil {
		logger.Warn().Err(err).Str("level", cfg.LogLevel).Msg("unknown log level, using info")
	}
	logger.Info().Interface("config", cfg).Msg("configuration")

	policy := newReloadablePolicy(cfg.AddressPolicy())
	reload := &reloader{resolver: r, policy: policy, target: cfg.Target(), logger: logger}

	opts := []wsclient.Option{
		wsclient.WithLogger(log.NewZerologAdapterWithLogger(logger)),
		wsclient.WithAddressPolicy(policy),
	}

	var metricsPlugin *metrics.Plugin
	if cfg.MetricsAddr != "" {
		metricsPlugin = metrics.New(metrics.DefaultConfig())
		opts = append(opts, wsclient.WithPlugin(metricsPlugin))
	}
	if cfg.WatchConfig {
		if r.path == "" || !cliconfig.FileExists(r.path) {
			logger.Warn().Str("path", r.path).Msg("config watch requested but no config file exists")
		} else {
			opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{
				Path:     r.path,
				OnChange: func(string) { reload.reload() },
			}))
		}
	}

	s, err := wsclient.New(cfg.Session(), opts...)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	reload.session = s
	s.Subscribe(events.MustPattern(`.*`), logEvent(logger))

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The session outlives ctx so Stop can close it on the loop.
	if err := s.Start(parent); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if err := s.Init(cfg.Code); err != nil {
		_ = s.Stop()
		return fmt.Errorf("init session: %w", err)
	}

	var srv *http.Server
	if metricsPlugin != nil {
		srv = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           newRouter(metricsPlugin.Handler(), s),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server")
			}
		}()
	}

	go func() {
		if err := readInput(ctx, os.Stdin, s, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn().Err(err).Msg("stdin closed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("received signal, stopping...")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}
	if err := s.Stop(); err != nil {
		return fmt.Errorf("stop session: %w", err)
	}
	return nil
}

// reloader re-initializes the session when the config file changes the
// session target. Tuning changes need a restart.
type reloader struct {
	resolver *resolver
	policy   *reloadablePolicy
	session  interface{ Init(code string) error }
	logger   zerolog.Logger

	mu     sync.Mutex
	target cliconfig.Target
}

func (r *reloader) reload() {
	cfg, err := r.resolver.resolve()
	if err != nil {
		r.logger.Error().Err(err).Msg("config reload failed, keeping current session")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg.Target() == r.target {
		r.logger.Info().Msg("config reloaded, session target unchanged")
		return
	}

	r.policy.Set(cfg.AddressPolicy())
	r.target = cfg.Target()
	r.logger.Info().
		Str("url", cfg.URL).
		Str("namespace", cfg.Namespace).
		Str("code", cfg.Code).
		Msg("session target changed, re-initializing")
	if err := r.session.Init(cfg.Code); err != nil {
		r.logger.Error().Err(err).Msg("re-init failed")
	}
}

// logEvent logs every bus event. Frame notifications go to debug.
func logEvent(logger zerolog.Logger) events.Handler {
	return func(payload any, name string) {
		var ev *zerolog.Event
		switch {
		case name == events.NotifyError:
			ev = logger.Warn()
		case strings.HasPrefix(name, "heartbeat:"):
			ev = logger.Debug()
		default:
			ev = logger.Info()
		}
		if err, ok := payload.(error); ok {
			ev = ev.Err(err)
		} else if payload != nil {
			ev = ev.Interface("payload", payload)
		}
		ev.Str("event", name).Msg("event")
	}
}
