package heartbeat

import (
	"github.com/google/uuid"

	"github.com/irothenbaum/websocket-client/pkg/envelope"
	"github.com/irothenbaum/websocket-client/pkg/log"
	"github.com/irothenbaum/websocket-client/pkg/schedule"
	"github.com/irothenbaum/websocket-client/pkg/transport"
)

// Message is an outbound message waiting in the queue.
type Message struct {
	Type    string
	Payload any
}

type flushState int

const (
	flushIdle flushState = iota
	flushWaiting
	flushDraining
	flushRetrying
)

func (s flushState) String() string {
	switch s {
	case flushIdle:
		return "idle"
	case flushWaiting:
		return "waiting"
	case flushDraining:
		return "draining"
	case flushRetrying:
		return "retrying"
	default:
		return "unknown"
	}
}

// Conn is one heartbeat-monitored transport.
type Conn struct {
	id       string
	address  string
	cfg      Config
	sched    schedule.Scheduler
	logger   log.Logger
	observer Observer

	transport transport.Transport

	hasOpened bool
	closed    bool
	missed    int

	queue []Message
	flush flushState
	poll  schedule.Timer
	beat  schedule.Timer

	waiter *Future
}

// Dial starts a transport to address and returns the Conn wrapping it.
// The transport connects in the background; Send queues until it opens.
func Dial(dialer transport.Dialer, address string, sched schedule.Scheduler, cfg Config, opts ...Option) *Conn {
	cfg.SetDefaults()

	o := options{observer: BaseObserver{}, logger: log.NoopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	c := &Conn{
		id:       o.id,
		address:  address,
		cfg:      cfg,
		sched:    sched,
		observer: o.observer,
		logger:   log.With(o.logger, log.String("conn_id", o.id)),
	}

	c.logger.Debug("dialing", log.String("address", address))
	c.transport = dialer.Dial(address, transport.Handler{
		OnOpen: func() {
			sched.Post(c.handleOpen)
		},
		OnMessage: func(frame []byte) {
			sched.Post(func() { c.handleMessage(frame) })
		},
		OnError: func(err error) {
			sched.Post(func() { c.handleError(err) })
		},
	})
	return c
}

// ID returns the connection's correlation ID.
func (c *Conn) ID() string { return c.id }

// Address returns the dialed address.
func (c *Conn) Address() string { return c.address }

// IsOpen reports whether the transport is open and the Conn not closed.
func (c *Conn) IsOpen() bool {
	return !c.closed && c.transport.State() == transport.StateOpen
}

// HasOpened reports whether the transport ever opened.
func (c *Conn) HasOpened() bool { return c.hasOpened }

// Closed reports whether Close ran.
func (c *Conn) Closed() bool { return c.closed }

// MissedHeartbeats returns the number of consecutive unanswered ticks.
func (c *Conn) MissedHeartbeats() int { return c.missed }

// Pending returns the number of queued messages.
func (c *Conn) Pending() int { return len(c.queue) }

// Send transmits a message, or queues it when the transport is not open
// or earlier messages are still queued. It reports whether the message
// went out immediately.
func (c *Conn) Send(typ string, payload any) bool {
	msg := Message{Type: typ, Payload: payload}
	if !c.IsOpen() || len(c.queue) > 0 {
		c.enqueue(msg)
		return false
	}

	env, frame, ok := c.encode(msg)
	if !ok {
		return false
	}
	if err := c.transport.Send(frame); err != nil {
		c.logger.Debug("send failed, queueing", log.String("type", typ), log.Err(err))
		c.enqueue(msg)
		return false
	}
	c.observer.OnMessageSent(env)
	return true
}

// WaitForConnection returns the future for the first opening. Every caller
// shares the same future until it is rejected.
func (c *Conn) WaitForConnection() *Future {
	if c.waiter != nil {
		return c.waiter
	}
	c.waiter = newFuture()
	switch {
	case c.closed:
		c.waiter.settle(ErrClosed)
	case c.hasOpened:
		c.waiter.settle(nil)
	}
	return c.waiter
}

// Close stops the timers, closes the transport and notifies OnClosed.
// It is idempotent.
func (c *Conn) Close() {
	if c.closed {
		return
	}
	c.closed = true

	c.stopPoll()
	c.flush = flushIdle
	if c.beat != nil {
		c.beat.Stop()
		c.beat = nil
	}

	if err := c.transport.Close(); err != nil {
		c.logger.Debug("transport close failed", log.Err(err))
	}
	if c.waiter != nil && !c.waiter.Settled() {
		c.waiter.settle(ErrClosed)
	}

	c.logger.Debug("closed", log.Int("queued", len(c.queue)))
	c.observer.OnClosed()
}

// Drain removes and returns every queued message except heartbeats.
func (c *Conn) Drain() []Message {
	var out []Message
	for _, m := range c.queue {
		if m.Type != c.cfg.HeartbeatType {
			out = append(out, m)
		}
	}
	c.queue = nil
	return out
}

func (c *Conn) handleOpen() {
	if c.closed {
		return
	}
	c.hasOpened = true
	c.logger.Debug("transport open")

	if c.beat == nil {
		c.beat = c.sched.Every(c.cfg.Interval, c.tick)
	}
	if c.waiter != nil {
		c.waiter.settle(nil)
	}
	if len(c.queue) > 0 {
		c.drain()
	}
}

func (c *Conn) handleMessage(frame []byte) {
	if c.closed {
		return
	}
	env, err := envelope.Decode(frame, c.sched.Now())
	if err != nil {
		c.logger.Warn("dropping malformed frame", log.Err(err))
		return
	}
	if env.Type == c.cfg.HeartbeatType {
		c.missed = 0
	}
	c.observer.OnMessageReceived(env)
}

func (c *Conn) handleError(err error) {
	if c.closed {
		return
	}
	if transport.IsConnectionLost(err) {
		err = &LostError{Err: err}
	}
	c.fail(err)
}

// fail rejects a pending open, announces err, then closes.
func (c *Conn) fail(err error) {
	c.logger.Warn("connection failed", log.Err(err), log.Bool("fatal", IsFatal(err)))

	if c.waiter != nil && !c.waiter.Settled() {
		c.waiter.settle(err)
		c.waiter = nil
	}
	c.observer.OnError(err)
	c.Close()
}

func (c *Conn) tick() {
	if !c.IsOpen() {
		return
	}
	c.missed++
	if c.missed >= c.cfg.MaxMissed {
		c.fail(&TimeoutError{Missed: c.missed, Interval: c.cfg.Interval})
		return
	}
	c.Send(c.cfg.HeartbeatType, nil)
}

func (c *Conn) enqueue(msg Message) {
	c.queue = append(c.queue, msg)
	c.ensureFlush()
}

func (c *Conn) ensureFlush() {
	if c.closed || c.flush != flushIdle {
		return
	}
	c.flush = flushWaiting
	c.startPoll()
}

func (c *Conn) startPoll() {
	if c.poll != nil {
		return
	}
	c.poll = c.sched.Every(c.cfg.FlushInterval, func() {
		if c.IsOpen() {
			c.drain()
		}
	})
}

func (c *Conn) stopPoll() {
	if c.poll != nil {
		c.poll.Stop()
		c.poll = nil
	}
}

// drain sends queued messages head first until the queue is empty or a
// transmit fails. Messages queued by observers during the drain join the
// tail and go out in the same pass.
func (c *Conn) drain() {
	if c.flush == flushDraining {
		return
	}
	c.stopPoll()
	c.flush = flushDraining
	c.logger.Debug("draining queue", log.Int("queued", len(c.queue)))
	c.observer.OnReopened()

	for len(c.queue) > 0 {
		if c.closed {
			return
		}
		if !c.IsOpen() {
			c.retry()
			return
		}

		msg := c.queue[0]
		env, frame, ok := c.encode(msg)
		if !ok {
			c.queue = c.queue[1:]
			continue
		}
		if err := c.transport.Send(frame); err != nil {
			c.logger.Debug("queued send failed", log.String("type", msg.Type), log.Err(err))
			c.retry()
			return
		}
		c.queue = c.queue[1:]
		c.observer.OnMessageSent(env)
	}

	if !c.closed {
		c.flush = flushIdle
	}
}

func (c *Conn) retry() {
	c.flush = flushRetrying
	c.startPoll()
}

func (c *Conn) encode(msg Message) (envelope.Envelope, []byte, bool) {
	env, err := envelope.New(msg.Type, msg.Payload, c.sched.Now())
	if err != nil {
		c.logger.Error("dropping unencodable message", log.String("type", msg.Type), log.Err(err))
		return envelope.Envelope{}, nil, false
	}
	frame, err := envelope.Encode(env)
	if err != nil {
		c.logger.Error("dropping unencodable message", log.String("type", msg.Type), log.Err(err))
		return envelope.Envelope{}, nil, false
	}
	return env, frame, true
}
