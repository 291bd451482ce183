package websocket

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/irothenbaum/websocket-client/pkg/transport"
)

type events struct {
	open     chan struct{}
	messages chan string
	errs     chan error
}

func newEvents() *events {
	return &events{
		open:     make(chan struct{}, 1),
		messages: make(chan string, 16),
		errs:     make(chan error, 4),
	}
}

func (e *events) handler() transport.Handler {
	return transport.Handler{
		OnOpen:    func() { e.open <- struct{}{} },
		OnMessage: func(frame []byte) { e.messages <- string(frame) },
		OnError:   func(err error) { e.errs <- err },
	}
}

func (e *events) waitOpen(t *testing.T) {
	t.Helper()
	select {
	case <-e.open:
	case err := <-e.errs:
		t.Fatalf("transport failed before open: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("transport never opened")
	}
}

func (e *events) waitErr(t *testing.T) error {
	t.Helper()
	select {
	case err := <-e.errs:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("no error reported")
		return nil
	}
}

var upgrader = websocket.Upgrader{}

// newServer runs serve for every accepted websocket.
func newServer(t *testing.T, serve func(ws *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		serve(ws)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func echo(ws *websocket.Conn) {
	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		if err := ws.WriteMessage(mt, data); err != nil {
			return
		}
	}
}

func TestDial_SendAndReceive(t *testing.T) {
	url := newServer(t, echo)
	ev := newEvents()

	tr := NewDialer(Config{}).Dial(url, ev.handler())
	ev.waitOpen(t)
	defer tr.Close()

	if tr.State() != transport.StateOpen {
		t.Fatalf("State() = %v, want open", tr.State())
	}
	if err := tr.Send([]byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("Send() = %v", err)
	}

	select {
	case msg := <-ev.messages:
		if msg != `{"type":"ping"}` {
			t.Errorf("echo = %q", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no echo")
	}
}

func TestDial_SendBeforeOpen(t *testing.T) {
	block := make(chan struct{})
	url := newServer(t, func(ws *websocket.Conn) { <-block })
	defer close(block)

	ev := newEvents()
	tr := NewDialer(Config{}).Dial(url, ev.handler())
	defer tr.Close()

	if tr.State() == transport.StateConnecting {
		if err := tr.Send([]byte("x")); !errors.Is(err, transport.ErrNotOpen) {
			t.Errorf("Send() while connecting = %v, want ErrNotOpen", err)
		}
	}
}

func TestDial_FailureIsConnectionLost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	ev := newEvents()
	tr := NewDialer(Config{HandshakeTimeout: time.Second}).Dial(url, ev.handler())

	err := ev.waitErr(t)
	if !transport.IsConnectionLost(err) {
		t.Errorf("dial error = %v, want connection lost", err)
	}
	if tr.State() != transport.StateClosed {
		t.Errorf("State() = %v, want closed", tr.State())
	}
}

func TestReadErrorClassification(t *testing.T) {
	tests := []struct {
		name  string
		serve func(ws *websocket.Conn)
		lost  bool
	}{
		{
			name: "normal closure",
			serve: func(ws *websocket.Conn) {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
				ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
				time.Sleep(100 * time.Millisecond)
			},
			lost: false,
		},
		{
			name: "policy violation",
			serve: func(ws *websocket.Conn) {
				msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "no")
				ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
				time.Sleep(100 * time.Millisecond)
			},
			lost: false,
		},
		{
			name: "going away",
			serve: func(ws *websocket.Conn) {
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "restart")
				ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
				time.Sleep(100 * time.Millisecond)
			},
			lost: true,
		},
		{
			name:  "abrupt drop",
			serve: func(ws *websocket.Conn) { ws.UnderlyingConn().Close() },
			lost:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := newServer(t, tt.serve)
			ev := newEvents()

			tr := NewDialer(Config{}).Dial(url, ev.handler())
			defer tr.Close()
			ev.waitOpen(t)

			err := ev.waitErr(t)
			if !errors.Is(err, transport.ErrTransport) {
				t.Errorf("error %v is not a transport error", err)
			}
			if got := transport.IsConnectionLost(err); got != tt.lost {
				t.Errorf("IsConnectionLost(%v) = %v, want %v", err, got, tt.lost)
			}
			if tr.State() != transport.StateClosed {
				t.Errorf("State() = %v, want closed", tr.State())
			}
		})
	}
}

func TestReadLimitIsNotFatal(t *testing.T) {
	url := newServer(t, func(ws *websocket.Conn) {
		ws.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", 1024)))
		time.Sleep(100 * time.Millisecond)
	})
	ev := newEvents()

	tr := NewDialer(Config{ReadLimit: 64}).Dial(url, ev.handler())
	defer tr.Close()
	ev.waitOpen(t)

	err := ev.waitErr(t)
	if transport.IsConnectionLost(err) {
		t.Errorf("read limit error %v classified as connection lost", err)
	}
}

func TestClose_NoCallbacksAfterwards(t *testing.T) {
	url := newServer(t, func(ws *websocket.Conn) {
		for i := 0; i < 50; i++ {
			if err := ws.WriteMessage(websocket.TextMessage, []byte("tick")); err != nil {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	})
	ev := newEvents()

	tr := NewDialer(Config{}).Dial(url, ev.handler())
	ev.waitOpen(t)

	if err := tr.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
	for len(ev.messages) > 0 {
		<-ev.messages
	}

	time.Sleep(100 * time.Millisecond)
	if n := len(ev.messages); n > 1 {
		t.Errorf("%d messages delivered after Close", n)
	}
	if n := len(ev.errs); n != 0 {
		t.Errorf("%d errors delivered after Close", n)
	}
	if tr.State() != transport.StateClosed {
		t.Errorf("State() = %v, want closed", tr.State())
	}
}
