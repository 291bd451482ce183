// Package websocket adapts gorilla/websocket to the transport port.
package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/irothenbaum/websocket-client/pkg/log"
	"github.com/irothenbaum/websocket-client/pkg/transport"
)

// Defaults applied by NewDialer to zero Config fields.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	closeGracePeriod        = time.Second
)

// Config tunes the adapter.
type Config struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration

	// ReadLimit caps inbound frame size in bytes. Zero means no limit.
	ReadLimit int64

	// Header is sent with the opening handshake.
	Header http.Header

	Logger log.Logger
}

// Dialer opens websocket transports.
type Dialer struct {
	cfg Config
	ws  *websocket.Dialer
}

// NewDialer creates a dialer with cfg.
func NewDialer(cfg Config) *Dialer {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}
	return &Dialer{
		cfg: cfg,
		ws: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
	}
}

// Dial starts the handshake in the background and returns immediately.
func (d *Dialer) Dial(address string, h transport.Handler) transport.Transport {
	ctx, cancel := context.WithCancel(context.Background())
	c := &conn{
		cfg:     d.cfg,
		handler: h,
		cancel:  cancel,
		state:   transport.StateConnecting,
	}
	go c.run(ctx, d.ws, address)
	return c
}

type conn struct {
	cfg     Config
	handler transport.Handler
	cancel  context.CancelFunc

	mu     sync.Mutex
	ws     *websocket.Conn
	state  transport.State
	closed bool

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (c *conn) run(ctx context.Context, dialer *websocket.Dialer, address string) {
	ws, resp, err := dialer.DialContext(ctx, address, c.cfg.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if c.markClosed() {
			c.handler.Error(transport.Lost("dial", err))
		}
		return
	}

	if c.cfg.ReadLimit > 0 {
		ws.SetReadLimit(c.cfg.ReadLimit)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		ws.Close()
		return
	}
	c.ws = ws
	c.state = transport.StateOpen
	c.mu.Unlock()

	c.handler.Open()
	c.readLoop(ws)
}

func (c *conn) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if !c.markClosed() {
				return
			}
			ws.Close()
			c.handler.Error(classify(err))
			return
		}
		if c.isClosed() {
			return
		}
		c.handler.Message(data)
	}
}

// classify maps a read failure onto the transport error taxonomy.
// Deliberate closes and protocol violations are reported as plain errors;
// everything else means the peer is gone.
func classify(err error) error {
	if errors.Is(err, websocket.ErrReadLimit) {
		return transport.NewError("read", err)
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		switch ce.Code {
		case websocket.CloseNormalClosure,
			websocket.CloseUnsupportedData,
			websocket.ClosePolicyViolation,
			websocket.CloseMessageTooBig:
			return transport.NewError("read", err)
		}
	}
	return transport.Lost("read", err)
}

// markClosed moves the connection to closed and reports whether this call
// did so while it was still live.
func (c *conn) markClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == transport.StateClosed {
		return false
	}
	c.state = transport.StateClosed
	return true
}

func (c *conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *conn) State() transport.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *conn) Send(frame []byte) error {
	c.mu.Lock()
	ws, state := c.ws, c.state
	c.mu.Unlock()
	if state != transport.StateOpen || ws == nil {
		return transport.NewError("send", transport.ErrNotOpen)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		// Closing the socket makes the read loop report the loss.
		ws.Close()
		return transport.Lost("write", err)
	}
	return nil
}

func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.state = transport.StateClosed
		ws := c.ws
		c.mu.Unlock()

		c.cancel()
		if ws == nil {
			return
		}

		c.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod)); err != nil {
			c.cfg.Logger.Debug("websocket close handshake failed", log.Err(err))
		}
		c.writeMu.Unlock()
		ws.Close()
	})
	return nil
}
