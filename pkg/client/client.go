package client

import (
	"errors"
	"time"

	"github.com/irothenbaum/websocket-client/pkg/envelope"
	"github.com/irothenbaum/websocket-client/pkg/events"
	"github.com/irothenbaum/websocket-client/pkg/heartbeat"
	"github.com/irothenbaum/websocket-client/pkg/lifecycle"
	"github.com/irothenbaum/websocket-client/pkg/log"
	"github.com/irothenbaum/websocket-client/pkg/schedule"
	"github.com/irothenbaum/websocket-client/pkg/transport"
)

// Client is the reconnection orchestrator for one logical session.
type Client struct {
	dialer     transport.Dialer
	sched      schedule.Scheduler
	cfg        Config
	policy     AddressPolicy
	translator Translator
	bus        *events.Bus
	logger     log.Logger

	conn    *heartbeat.Conn
	active  bool
	code    string
	token   string
	pulse   bool
	backoff *lifecycle.Backoff

	// failing is set by a fatal error and cleared by the next received
	// message; connection:lost is published on its rising edge.
	failing   bool
	reconnect schedule.Timer

	// pending carries unsent messages from a failed connection to its
	// replacement.
	pending []heartbeat.Message
}

// New creates an idle client. Call Init to start a session.
func New(dialer transport.Dialer, sched schedule.Scheduler, opts ...Option) *Client {
	o := options{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	o.config.SetDefaults()
	if o.policy == nil {
		o.policy = DefaultAddressPolicy{}
	}
	if o.translator == nil {
		o.translator = rejectAll{}
	}
	if o.bus == nil {
		o.bus = events.NewBus()
	}
	if o.logger == nil {
		o.logger = log.NoopLogger{}
	}

	return &Client{
		dialer:     dialer,
		sched:      sched,
		cfg:        o.config,
		policy:     o.policy,
		translator: o.translator,
		bus:        o.bus,
		logger:     log.With(o.logger, log.String("component", "client")),
		backoff:    lifecycle.NewBackoff(o.config.ReconnectFloor, o.config.ReconnectCeiling),
	}
}

// Bus returns the bus events are published on.
func (c *Client) Bus() *events.Bus { return c.bus }

// Conn returns the current connection, or nil between a failure and the
// next reconnect attempt.
func (c *Client) Conn() *heartbeat.Conn { return c.conn }

// Code returns the connect code the session was started with.
func (c *Client) Code() string { return c.code }

// RecoveryToken returns the token from the last connection:ready message.
func (c *Client) RecoveryToken() string { return c.token }

// HasPulse reports whether a message arrived since the last (re)connect.
func (c *Client) HasPulse() bool { return c.pulse }

// ReconnectDelay returns the delay the next reconnect will wait.
func (c *Client) ReconnectDelay() time.Duration { return c.backoff.Current() }

// Active reports whether a session is running, connected or not.
func (c *Client) Active() bool { return c.active }

// Init closes any current session and starts a new one. An empty code
// asks the server to create a session; otherwise the session with that
// code is joined. The init message is queued and connection:init is
// published without waiting for the server.
func (c *Client) Init(code string) {
	c.Close()

	c.active = true
	c.code = code
	c.token = ""
	c.failing = false
	c.backoff.Reset()

	address := c.policy.ConnectAddress(code)
	c.logger.Info("starting session", log.String("address", address), log.Bool("join", code != ""))
	conn := c.dial(address)

	ev := events.NewInitEvent(code, c.sched.Now())
	conn.Send(events.TypeInit, ev)
	c.bus.Publish(events.TypeInit, ev)
}

// Close ends the session: the connection is closed, a pending reconnect
// cancelled and undelivered messages discarded.
func (c *Client) Close() {
	wasActive := c.active || c.conn != nil
	c.active = false

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	if n := len(c.pending); n > 0 {
		c.logger.Debug("discarding undelivered messages", log.Int("count", n))
	}
	c.pending = nil
	c.pulse = false

	if wasActive {
		c.logger.Info("session closed")
		c.bus.Publish(events.TypeClose, events.NewCloseEvent(c.sched.Now()))
	}
}

// Send transmits a message on the session. It reports whether the message
// went out immediately; otherwise it is queued for the current or next
// connection. Outside a session it does nothing and returns false.
func (c *Client) Send(typ string, payload any) bool {
	if !c.active {
		c.logger.Debug("send outside session dropped", log.String("type", typ))
		return false
	}
	if c.conn == nil {
		c.pending = append(c.pending, heartbeat.Message{Type: typ, Payload: payload})
		return false
	}
	return c.conn.Send(typ, payload)
}

func (c *Client) dial(address string) *heartbeat.Conn {
	obs := &connObserver{client: c}
	conn := heartbeat.Dial(c.dialer, address, c.sched, c.cfg.Heartbeat,
		heartbeat.WithObserver(obs),
		heartbeat.WithLogger(c.logger),
	)
	obs.conn = conn

	c.conn = conn
	c.pulse = false
	return conn
}

func (c *Client) attemptReconnect() {
	c.reconnect = nil
	if !c.active {
		return
	}
	if c.conn != nil {
		// Init replaced the failed connection while this attempt waited.
		c.logger.Debug("reconnect skipped, connection already live", log.String("conn_id", c.conn.ID()))
		return
	}

	address := c.policy.ReconnectAddress(c.code, c.token)
	c.logger.Info("reconnecting", log.String("address", address), log.Int("carried", len(c.pending)))
	conn := c.dial(address)

	carried := c.pending
	c.pending = nil
	for _, m := range carried {
		conn.Send(m.Type, m.Payload)
	}

	conn.WaitForConnection().Then(func(err error) {
		// A failed attempt re-enters the backoff through its error.
		if err != nil || c.conn != conn {
			return
		}
		c.logger.Info("connection found")
		c.bus.Publish(events.TypeFound, events.NewFoundEvent(c.sched.Now()))
	})
}

func (c *Client) handleMessage(env envelope.Envelope) {
	c.pulse = true
	c.failing = false
	c.backoff.Reset()

	ev, ok := c.translate(env)
	if !ok {
		return
	}
	ev.SetTimestamp(env.TimestampSent)
	c.bus.Publish(env.Type, ev)
}

func (c *Client) translate(env envelope.Envelope) (events.Event, bool) {
	now := c.sched.Now()

	switch env.Type {
	case c.cfg.Heartbeat.HeartbeatType:
		return nil, false

	case events.TypeInit:
		var p initPayload
		if !c.decode(env, &p) {
			return nil, false
		}
		return events.NewInitEvent(p.ConnectCode, now), true

	case events.TypeWaiting:
		var p waitingPayload
		if !c.decode(env, &p) {
			return nil, false
		}
		return events.NewWaitingEvent(p.ConnectCode, p.RecoveryCode, now), true

	case events.TypeReady:
		var p readyPayload
		if !c.decode(env, &p) {
			return nil, false
		}
		c.token = p.RecoveryCode
		return events.NewReadyEvent(p.RecoveryCode, now), true
	}

	ev, err := c.translator.Translate(env)
	if err != nil {
		c.logger.Warn("dropping message", log.String("type", env.Type), log.Err(err))
		return nil, false
	}
	if ev == nil {
		return nil, false
	}
	return ev, true
}

func (c *Client) decode(env envelope.Envelope, v any) bool {
	err := env.Unmarshal(v)
	if err == nil || errors.Is(err, envelope.ErrNoPayload) {
		return true
	}
	c.logger.Warn("dropping message with invalid payload", log.String("type", env.Type), log.Err(err))
	return false
}

func (c *Client) handleError(conn *heartbeat.Conn, err error) {
	if !heartbeat.IsFatal(err) {
		c.logger.Warn("connection error", log.String("conn_id", conn.ID()), log.Err(err))
		return
	}
	if !c.current(conn) {
		return
	}

	if !c.failing {
		c.failing = true
		c.logger.Warn("connection lost", log.String("conn_id", conn.ID()), log.Err(err))
		c.bus.Publish(events.TypeLost, events.NewLostEvent(c.code, c.sched.Now()))
		// A subscriber may have closed or restarted the session.
		if !c.current(conn) {
			return
		}
	}

	delay := c.backoff.Next()
	if c.reconnect != nil {
		c.reconnect.Stop()
	}
	c.reconnect = c.sched.AfterFunc(delay, c.attemptReconnect)
	c.logger.Info("reconnect scheduled",
		log.Duration("delay", delay),
		log.Duration("next_delay", c.backoff.Current()))

	conn.Close()
}

// current reports whether conn is still the live connection of an active
// session. Bus handlers can call Init or Close, so it is rechecked after
// every publish.
func (c *Client) current(conn *heartbeat.Conn) bool {
	return c.active && c.conn == conn
}

func (c *Client) handleClosed(conn *heartbeat.Conn) {
	c.pulse = false
	c.pending = append(c.pending, conn.Drain()...)
	c.conn = nil
}

// connObserver routes one connection's notifications to the client while
// that connection is current, and republishes them on the bus.
type connObserver struct {
	client *Client
	conn   *heartbeat.Conn
}

func (o *connObserver) current() bool {
	return o.conn != nil && o.client.conn == o.conn
}

func (o *connObserver) OnMessageSent(env envelope.Envelope) {
	if o.current() {
		o.client.bus.Publish(events.NotifyMessageSent, env)
	}
}

func (o *connObserver) OnMessageReceived(env envelope.Envelope) {
	if !o.current() {
		return
	}
	o.client.bus.Publish(events.NotifyMessageReceived, env)
	o.client.handleMessage(env)
}

func (o *connObserver) OnReopened() {
	if o.current() {
		o.client.bus.Publish(events.NotifyReopened, o.conn.ID())
	}
}

func (o *connObserver) OnError(err error) {
	if !o.current() {
		return
	}
	o.client.bus.Publish(events.NotifyError, err)
	o.client.handleError(o.conn, err)
}

func (o *connObserver) OnClosed() {
	if !o.current() {
		return
	}
	o.client.bus.Publish(events.NotifyClosed, o.conn.ID())
	o.client.handleClosed(o.conn)
}
