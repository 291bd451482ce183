// Package memory is an in-process transport driven by the caller. Tests use
// it to open, feed, fail and drop connections at exact points in time.
package memory

import (
	"sync"

	"github.com/irothenbaum/websocket-client/pkg/transport"
)

// Dialer records every connection it creates.
type Dialer struct {
	mu    sync.Mutex
	conns []*Conn
}

// NewDialer creates an empty dialer.
func NewDialer() *Dialer {
	return &Dialer{}
}

// Dial creates a connection in the connecting state.
func (d *Dialer) Dial(address string, h transport.Handler) transport.Transport {
	c := &Conn{address: address, handler: h, state: transport.StateConnecting}

	d.mu.Lock()
	d.conns = append(d.conns, c)
	d.mu.Unlock()
	return c
}

// Conns returns every connection dialed so far, oldest first.
func (d *Dialer) Conns() []*Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Conn(nil), d.conns...)
}

// Count returns the number of dials.
func (d *Dialer) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

// Last returns the most recent connection, or nil.
func (d *Dialer) Last() *Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

// Conn is one in-memory connection.
type Conn struct {
	address string
	handler transport.Handler

	mu       sync.Mutex
	state    transport.State
	sent     [][]byte
	sendErr  error
	closed   bool
	closeErr error
}

// Address returns the dialed address.
func (c *Conn) Address() string { return c.address }

// State returns the current state.
func (c *Conn) State() transport.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send records frame. It fails with ErrNotOpen unless the connection is
// open, and with the injected error after FailSends.
func (c *Conn) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != transport.StateOpen {
		return transport.NewError("send", transport.ErrNotOpen)
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, append([]byte(nil), frame...))
	return nil
}

// Close marks the connection closed. No callbacks follow.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = transport.StateClosed
	c.closed = true
	return c.closeErr
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Sent returns a copy of every frame transmitted so far.
func (c *Conn) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}

// FailSends makes every later Send return err; nil restores normal sends.
func (c *Conn) FailSends(err error) {
	c.mu.Lock()
	c.sendErr = err
	c.mu.Unlock()
}

// Open moves the connection to open and fires OnOpen.
func (c *Conn) Open() {
	if !c.transition(transport.StateOpen) {
		return
	}
	c.handler.Open()
}

// Deliver fires OnMessage with frame.
func (c *Conn) Deliver(frame []byte) {
	if c.isClosed() {
		return
	}
	c.handler.Message(frame)
}

// DeliverString is Deliver for string frames.
func (c *Conn) DeliverString(frame string) {
	c.Deliver([]byte(frame))
}

// Fail fires OnError with err without changing state.
func (c *Conn) Fail(err error) {
	if c.isClosed() {
		return
	}
	c.handler.Error(err)
}

// Drop simulates the peer vanishing: the state becomes closed and OnError
// fires with a connection-lost error.
func (c *Conn) Drop() {
	if !c.transition(transport.StateClosed) {
		return
	}
	c.handler.Error(transport.Lost("read", nil))
}

// Interrupt moves an open connection back to connecting without any
// callback, modelling a transport that stopped accepting writes.
func (c *Conn) Interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.state = transport.StateConnecting
	}
}

func (c *Conn) transition(to transport.State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == to {
		return false
	}
	c.state = to
	return true
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
