package wsclient_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/irothenbaum/websocket-client/pkg/client"
	"github.com/irothenbaum/websocket-client/pkg/events"
	"github.com/irothenbaum/websocket-client/pkg/transport/memory"
	"github.com/irothenbaum/websocket-client/pkg/wsclient"
)

// =============================================================================
// Test Utilities
// =============================================================================

type trackingPlugin struct {
	name      string
	order     *[]string
	mu        *sync.Mutex
	initError error
	cfg       wsclient.PluginConfig
}

func (p *trackingPlugin) Name() string { return p.name }

func (p *trackingPlugin) Initialize(ctx context.Context, cfg wsclient.PluginConfig) error {
	if p.initError != nil {
		return p.initError
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
	*p.order = append(*p.order, "init:"+p.name)
	return nil
}

func (p *trackingPlugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	*p.order = append(*p.order, "shutdown:"+p.name)
	return nil
}

type stateRecorder struct {
	wsclient.BaseEventHandler
	mu     sync.Mutex
	states []wsclient.State
}

func (r *stateRecorder) OnStateChange(ev wsclient.StateChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, ev.Current)
}

func (r *stateRecorder) snapshot() []wsclient.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]wsclient.State(nil), r.states...)
}

type eventLog struct {
	mu    sync.Mutex
	names []string
}

func (l *eventLog) handler(payload any, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

func testConfig() wsclient.Config {
	return wsclient.Config{
		BaseURL:   "ws://example.test",
		Namespace: "room",
	}
}

func startSession(t *testing.T, opts ...wsclient.Option) (*wsclient.Session, *memory.Dialer) {
	t.Helper()
	dialer := memory.NewDialer()
	s, err := wsclient.New(testConfig(), append([]wsclient.Option{wsclient.WithDialer(dialer)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })
	settle(t, s)
	return s, dialer
}

// settle waits until every callback posted so far has run.
func settle(t *testing.T, s *wsclient.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Do(ctx, func(*client.Client) {}); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func waitForState(t *testing.T, s *wsclient.Session, want wsclient.State) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for s.Status() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Status = %s, want %s", s.Status(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  wsclient.Config
	}{
		{"missing url", wsclient.Config{}},
		{"http scheme", wsclient.Config{BaseURL: "http://example.test"}},
		{"bad placement", wsclient.Config{BaseURL: "ws://example.test", TokenPlacement: "sideways"}},
		{"ceiling below floor", wsclient.Config{
			BaseURL:          "ws://example.test",
			ReconnectFloor:   time.Minute,
			ReconnectCeiling: time.Second,
		}},
		{"flush slower than heartbeat", wsclient.Config{
			BaseURL:           "wss://example.test",
			HeartbeatInterval: 100 * time.Millisecond,
			FlushInterval:     time.Second,
		}},
		{"negative read limit", wsclient.Config{BaseURL: "ws://example.test", ReadLimit: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wsclient.New(tt.cfg)
			if !errors.Is(err, wsclient.ErrInvalidConfig) {
				t.Fatalf("New error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	s, err := wsclient.New(testConfig(), wsclient.WithDialer(memory.NewDialer()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg := s.Config()

	if cfg.HeartbeatType != events.TypeHeartbeat {
		t.Errorf("HeartbeatType = %q", cfg.HeartbeatType)
	}
	if cfg.HeartbeatInterval != time.Second || cfg.MaxMissedHeartbeats != 3 {
		t.Errorf("heartbeat = %s/%d, want 1s/3", cfg.HeartbeatInterval, cfg.MaxMissedHeartbeats)
	}
	if cfg.FlushInterval != 50*time.Millisecond {
		t.Errorf("FlushInterval = %s", cfg.FlushInterval)
	}
	if cfg.ReconnectFloor != time.Second || cfg.ReconnectCeiling != time.Minute {
		t.Errorf("reconnect = %s..%s, want 1s..1m", cfg.ReconnectFloor, cfg.ReconnectCeiling)
	}
}

func TestSession_NotRunning(t *testing.T) {
	s, err := wsclient.New(testConfig(), wsclient.WithDialer(memory.NewDialer()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s.Status() != wsclient.StateStopped {
		t.Fatalf("Status = %s, want stopped", s.Status())
	}
	if err := s.Init(""); !errors.Is(err, wsclient.ErrNotRunning) {
		t.Errorf("Init error = %v", err)
	}
	if err := s.Send("chat", nil); !errors.Is(err, wsclient.ErrNotRunning) {
		t.Errorf("Send error = %v", err)
	}
	if _, err := s.HasPulse(context.Background()); !errors.Is(err, wsclient.ErrNotRunning) {
		t.Errorf("HasPulse error = %v", err)
	}
	if err := s.Stop(); !errors.Is(err, wsclient.ErrNotRunning) {
		t.Errorf("Stop error = %v", err)
	}
}

func TestSession_StartStopStates(t *testing.T) {
	rec := &stateRecorder{}
	dialer := memory.NewDialer()
	s, err := wsclient.New(testConfig(), wsclient.WithDialer(dialer), wsclient.WithEventHandler(rec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	settle(t, s)
	if s.Status() != wsclient.StateRunning {
		t.Fatalf("Status = %s, want running", s.Status())
	}
	if err := s.Start(context.Background()); !errors.Is(err, wsclient.ErrAlreadyRunning) {
		t.Fatalf("second Start error = %v", err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	want := []wsclient.State{
		wsclient.StateStarting,
		wsclient.StateRunning,
		wsclient.StateStopping,
		wsclient.StateStopped,
	}
	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("states = %v, want %v", got, want)
		}
	}

	// A stopped session can be started again.
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	settle(t, s)
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop after restart: %v", err)
	}
}

func TestSession_HandshakeAndRecoveryToken(t *testing.T) {
	s, dialer := startSession(t)
	rec := &eventLog{}
	s.Subscribe(events.MustPattern(`^connection:`), rec.handler)

	if err := s.Init(""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	settle(t, s)

	conn := dialer.Last()
	if conn == nil {
		t.Fatal("no connection dialed")
	}
	if conn.Address() != "ws://example.test/room/create" {
		t.Fatalf("address = %q", conn.Address())
	}

	conn.Open()
	conn.DeliverString(`{"type":"connection:ready","payload":{"recoveryCode":"tok"},"timestampSent":1}`)

	token, err := s.RecoveryToken(context.Background())
	if err != nil || token != "tok" {
		t.Fatalf("RecoveryToken = %q, %v", token, err)
	}
	pulse, err := s.HasPulse(context.Background())
	if err != nil || !pulse {
		t.Fatalf("HasPulse = %v, %v", pulse, err)
	}

	sent := conn.Sent()
	if len(sent) == 0 || !strings.Contains(string(sent[0]), `"type":"connection:init"`) {
		t.Fatalf("first frame = %q", sent)
	}

	got := rec.snapshot()
	want := []string{events.TypeInit, events.TypeReady}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestSession_StopPublishesClose(t *testing.T) {
	dialer := memory.NewDialer()
	s, err := wsclient.New(testConfig(), wsclient.WithDialer(dialer))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	rec := &eventLog{}
	s.Subscribe(events.Exact(events.TypeClose), rec.handler)
	if err := s.Init("join-me"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	settle(t, s)

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := rec.snapshot(); len(got) != 1 {
		t.Fatalf("close events = %v, want one", got)
	}
	if !dialer.Last().Closed() {
		t.Fatal("transport not closed on Stop")
	}
}

func TestSession_StartContextCancelled(t *testing.T) {
	var (
		order []string
		mu    sync.Mutex
	)
	plugin := &trackingPlugin{name: "p", order: &order, mu: &mu}
	dialer := memory.NewDialer()
	s, err := wsclient.New(testConfig(), wsclient.WithDialer(dialer), wsclient.WithPlugin(plugin))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rec := &eventLog{}
	s.Subscribe(events.Exact(events.TypeClose), rec.handler)
	if err := s.Init(""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	settle(t, s)
	dialer.Last().Open()
	settle(t, s)

	cancel()
	waitForState(t, s, wsclient.StateStopped)

	if !dialer.Last().Closed() {
		t.Fatal("transport left open after the start context ended")
	}
	if got := rec.snapshot(); len(got) != 1 {
		t.Errorf("close events = %v, want one", got)
	}
	if err := s.Init("again"); !errors.Is(err, wsclient.ErrNotRunning) {
		t.Errorf("Init after cancel error = %v", err)
	}
	if err := s.Send("chat", nil); !errors.Is(err, wsclient.ErrNotRunning) {
		t.Errorf("Send after cancel error = %v", err)
	}
	if err := s.Stop(); !errors.Is(err, wsclient.ErrNotRunning) {
		t.Errorf("Stop after cancel error = %v", err)
	}

	mu.Lock()
	got := append([]string(nil), order...)
	mu.Unlock()
	if want := []string{"init:p", "shutdown:p"}; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("plugin calls = %v, want %v", got, want)
	}

	// The session can be started again after the context ended.
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	settle(t, s)
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop after restart: %v", err)
	}
}

func TestSession_SendQueuesUntilOpen(t *testing.T) {
	s, dialer := startSession(t)

	if err := s.Init(""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := s.Send("chat", map[string]string{"text": "hi"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	settle(t, s)

	conn := dialer.Last()
	if n := len(conn.Sent()); n != 0 {
		t.Fatalf("sent %d frames before open", n)
	}
	conn.Open()
	settle(t, s)

	sent := conn.Sent()
	if len(sent) != 2 {
		t.Fatalf("sent %d frames, want 2", len(sent))
	}
	if !strings.Contains(string(sent[1]), `"payload":{"text":"hi"}`) {
		t.Fatalf("second frame = %s", sent[1])
	}
}

func TestSession_PluginsInitAndShutdownInReverse(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	a := &trackingPlugin{name: "a", order: &order, mu: &mu}
	b := &trackingPlugin{name: "b", order: &order, mu: &mu}

	s, err := wsclient.New(testConfig(),
		wsclient.WithDialer(memory.NewDialer()),
		wsclient.WithPlugin(a),
		wsclient.WithPlugin(b),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	want := []string{"init:a", "init:b", "shutdown:b", "shutdown:a"}
	mu.Lock()
	defer mu.Unlock()
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Fatalf("order = %v, want %v", order, want)
	}
	if a.cfg.Bus != s.Bus() || a.cfg.BaseURL != "ws://example.test" || a.cfg.Namespace != "room" {
		t.Fatalf("plugin config = %+v", a.cfg)
	}
}

func TestSession_PluginInitFailure(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	boom := errors.New("boom")
	a := &trackingPlugin{name: "a", order: &order, mu: &mu}
	b := &trackingPlugin{name: "b", order: &order, mu: &mu, initError: boom}

	s, err := wsclient.New(testConfig(),
		wsclient.WithDialer(memory.NewDialer()),
		wsclient.WithPlugin(a),
		wsclient.WithPlugin(b),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Start error = %v, want boom", err)
	}
	if s.Status() != wsclient.StateCrashed {
		t.Fatalf("Status = %s, want crashed", s.Status())
	}

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(order, ",") != "init:a,shutdown:a" {
		t.Fatalf("order = %v", order)
	}
}

func TestModuleVersions(t *testing.T) {
	versions := wsclient.ModuleVersions()
	for _, name := range []string{"wsclient", "client", "heartbeat", "envelope", "events", "transport"} {
		if _, ok := versions[name]; !ok {
			t.Errorf("missing module %q", name)
		}
	}
}
