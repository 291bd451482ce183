package transport

// State is the lifecycle of one physical transport.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Handler receives transport callbacks. Nil fields are skipped.
// Callbacks may arrive on any goroutine but never concurrently with each
// other, and never after Close returned.
type Handler struct {
	OnOpen    func()
	OnMessage func(frame []byte)
	OnError   func(err error)
}

func (h Handler) Open() {
	if h.OnOpen != nil {
		h.OnOpen()
	}
}

func (h Handler) Message(frame []byte) {
	if h.OnMessage != nil {
		h.OnMessage(frame)
	}
}

func (h Handler) Error(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

// Transport is one physical connection carrying text frames.
type Transport interface {
	State() State

	// Send transmits one frame. It returns an error wrapping ErrNotOpen
	// when the transport is not open.
	Send(frame []byte) error

	// Close tears the transport down. It is idempotent.
	Close() error
}

// Dialer starts a transport to address. It must not invoke h before
// returning.
type Dialer interface {
	Dial(address string, h Handler) Transport
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(address string, h Handler) Transport

func (f DialerFunc) Dial(address string, h Handler) Transport {
	return f(address, h)
}
