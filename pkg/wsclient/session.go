package wsclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/irothenbaum/websocket-client/pkg/client"
	"github.com/irothenbaum/websocket-client/pkg/events"
	"github.com/irothenbaum/websocket-client/pkg/lifecycle"
	"github.com/irothenbaum/websocket-client/pkg/log"
	"github.com/irothenbaum/websocket-client/pkg/schedule"
	"github.com/irothenbaum/websocket-client/pkg/transport/websocket"
)

// Session is a resilient streaming session that can be embedded in other
// applications. Use New() to create an instance, then Start() to run its
// event loop.
type Session struct {
	config    Config
	lifecycle *lifecycle.DefaultManager
	loop      *schedule.Loop
	client    *client.Client
	bus       *events.Bus
	logger    log.Logger

	plugins []Plugin

	// shutdownTimeout bounds Stop; overridden in tests.
	shutdownTimeout time.Duration

	mu       sync.Mutex
	loopDone chan struct{}
}

// New creates a Session with the given configuration.
// The session is created in StateStopped; call Start() to run it.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Session, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = log.NoopLogger{}
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	dialer := o.dialer
	if dialer == nil {
		dialer = websocket.NewDialer(websocket.Config{
			HandshakeTimeout: cfg.HandshakeTimeout,
			WriteTimeout:     cfg.WriteTimeout,
			ReadLimit:        cfg.ReadLimit,
			Logger:           logger,
		})
	}
	policy := o.policy
	if policy == nil {
		policy = cfg.addressPolicy()
	}

	loop := schedule.NewLoop(logger)
	bus := events.NewBus()

	clientOpts := []client.Option{
		client.WithConfig(cfg.clientConfig()),
		client.WithAddressPolicy(policy),
		client.WithBus(bus),
		client.WithLogger(logger),
	}
	if o.translator != nil {
		clientOpts = append(clientOpts, client.WithTranslator(o.translator))
	}

	return &Session{
		config:          cfg,
		lifecycle:       lifecycle.NewManager(logger, emitter),
		loop:            loop,
		client:          client.New(dialer, loop, clientOpts...),
		bus:             bus,
		logger:          logger,
		plugins:         o.plugins,
		shutdownTimeout: lifecycle.ShutdownTimeout,
	}, nil
}

// Start runs the event loop in the background and initializes plugins.
// Returns immediately after starting the loop goroutine.
// Returns an error if already running or if a plugin fails to initialize.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(lifecycle.StateStarting, "Start() called"); err != nil {
		return err
	}
	s.loopDone = nil

	runCtx, cancel := context.WithCancel(ctx)
	s.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		Bus:       s.bus,
		Logger:    s.logger,
		BaseURL:   s.config.BaseURL,
		Namespace: s.config.Namespace,
	}
	for i, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			s.shutdownPlugins(s.plugins[:i])
			cancel()
			_ = s.lifecycle.TransitionTo(lifecycle.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		s.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	done := make(chan struct{})
	s.loopDone = done

	s.lifecycle.AddWorker()
	go func() {
		defer s.lifecycle.WorkerDone()
		defer close(done)

		if err := s.lifecycle.TransitionTo(lifecycle.StateRunning, "event loop starting"); err != nil {
			s.logger.Error("failed to transition to running", log.Err(err))
			return
		}

		err := s.loop.Run(runCtx)

		// The loop is gone, so this goroutine owns the client now. Close is
		// a no-op when Stop already ran it on the loop.
		s.client.Close()

		if runCtx.Err() == nil {
			s.logger.Error("event loop error", log.Err(err))
			_ = s.lifecycle.TransitionTo(lifecycle.StateCrashed, err.Error())
			return
		}
		s.stopCancelled(err)
	}()

	return nil
}

// Stop closes the session, stops the loop and shuts plugins down in
// reverse order. Waits up to 30 seconds for the loop to exit.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(lifecycle.StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}
	done := s.loopDone
	s.mu.Unlock()

	// Close on the loop so connection:close reaches subscribers.
	closed := make(chan struct{})
	s.loop.Post(func() {
		s.client.Close()
		close(closed)
	})
	timer := time.NewTimer(s.shutdownTimeout)
	select {
	case <-closed:
	case <-done:
	case <-timer.C:
		s.logger.Warn("session close did not run before shutdown timeout")
	}
	timer.Stop()

	s.lifecycle.Cancel()
	err := s.lifecycle.WaitWithTimeout(s.shutdownTimeout)

	s.shutdownPlugins(s.plugins)

	if err != nil {
		_ = s.lifecycle.TransitionTo(lifecycle.StateCrashed, "shutdown timeout")
	} else {
		_ = s.lifecycle.TransitionTo(lifecycle.StateStopped, "graceful shutdown")
	}
	return err
}

// stopCancelled finishes a shutdown caused by the Start context ending.
// A concurrent Stop already owns the transition and is left alone.
func (s *Session) stopCancelled(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lifecycle.State() != lifecycle.StateRunning {
		return
	}
	if errors.Is(cause, context.DeadlineExceeded) {
		s.logger.Warn("start context deadline exceeded, stopping")
	} else {
		s.logger.Info("start context cancelled, stopping")
	}
	_ = s.lifecycle.TransitionTo(lifecycle.StateStopping, "start context done")
	s.shutdownPlugins(s.plugins)
	_ = s.lifecycle.TransitionTo(lifecycle.StateStopped, cause.Error())
}

func (s *Session) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			s.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			continue
		}
		s.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
	}
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Session) Status() State {
	return s.lifecycle.State()
}

// Config returns the session configuration with defaults applied.
func (s *Session) Config() Config {
	return s.config
}

// Bus returns the bus domain events and connection notifications are
// published on. Handlers run on the event loop.
func (s *Session) Bus() *events.Bus {
	return s.bus
}

// Subscribe registers h for every event name m matches.
func (s *Session) Subscribe(m events.Matcher, h events.Handler) events.SubscriptionID {
	return s.bus.Subscribe(m, h)
}

// Unsubscribe removes a subscription. It reports whether id was registered.
func (s *Session) Unsubscribe(id events.SubscriptionID) bool {
	return s.bus.Unsubscribe(id)
}

// Init starts a new session, closing any current one. An empty code asks
// the server to create a session.
func (s *Session) Init(code string) error {
	return s.post(func(c *client.Client) { c.Init(code) })
}

// Close ends the current session. The runtime keeps running; call Init to
// start another session.
func (s *Session) Close() error {
	return s.post(func(c *client.Client) { c.Close() })
}

// Send queues a message for the current session. Messages sent outside a
// session are dropped.
func (s *Session) Send(typ string, payload any) error {
	return s.post(func(c *client.Client) { c.Send(typ, payload) })
}

// Do runs fn on the event loop and waits for it to return.
func (s *Session) Do(ctx context.Context, fn func(c *client.Client)) error {
	s.mu.Lock()
	done := s.loopDone
	s.mu.Unlock()
	if !s.acceptsCalls() || done == nil {
		return ErrNotRunning
	}

	ran := make(chan struct{})
	s.loop.Post(func() {
		defer close(ran)
		fn(s.client)
	})

	select {
	case <-ran:
		return nil
	case <-done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HasPulse reports whether a message arrived on the current connection.
func (s *Session) HasPulse(ctx context.Context) (bool, error) {
	var pulse bool
	err := s.Do(ctx, func(c *client.Client) { pulse = c.HasPulse() })
	return pulse, err
}

// RecoveryToken returns the token the server issued for the session.
func (s *Session) RecoveryToken(ctx context.Context) (string, error) {
	var token string
	err := s.Do(ctx, func(c *client.Client) { token = c.RecoveryToken() })
	return token, err
}

func (s *Session) post(fn func(c *client.Client)) error {
	if !s.acceptsCalls() {
		return ErrNotRunning
	}
	s.loop.Post(func() { fn(s.client) })
	return nil
}

func (s *Session) acceptsCalls() bool {
	st := s.lifecycle.State()
	return st == lifecycle.StateStarting || st == lifecycle.StateRunning
}
