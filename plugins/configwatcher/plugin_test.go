package configwatcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/irothenbaum/websocket-client/pkg/log"
	"github.com/irothenbaum/websocket-client/pkg/wsclient"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPlugin_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`url = "ws://a"`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var calls atomic.Int32
	var gotPath atomic.Value
	p := New(Config{
		Path:          path,
		DebounceDelay: 20 * time.Millisecond,
		OnChange: func(changed string) {
			gotPath.Store(changed)
			calls.Add(1)
		},
	})
	if err := p.Initialize(context.Background(), wsclient.PluginConfig{Logger: log.NoopLogger{}}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer p.Shutdown(context.Background())

	// A burst of writes collapses into one notification.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`url = "ws://b"`), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	waitFor(t, func() bool { return calls.Load() >= 1 })
	time.Sleep(100 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("OnChange called %d times, want 1", n)
	}
	if gotPath.Load() != path {
		t.Errorf("OnChange path = %v, want %s", gotPath.Load(), path)
	}
}

func TestPlugin_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	var calls atomic.Int32
	p := New(Config{
		Path:          path,
		DebounceDelay: 10 * time.Millisecond,
		OnChange:      func(string) { calls.Add(1) },
	})
	if err := p.Initialize(context.Background(), wsclient.PluginConfig{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer p.Shutdown(context.Background())

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("OnChange called %d times for an unrelated file", n)
	}
}

func TestPlugin_NoCallbackAfterShutdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	var calls atomic.Int32
	p := New(Config{
		Path:          path,
		DebounceDelay: 50 * time.Millisecond,
		OnChange:      func(string) { calls.Add(1) },
	})
	if err := p.Initialize(context.Background(), wsclient.PluginConfig{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if err := os.WriteFile(path, []byte("x = 1"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("OnChange called %d times after Shutdown", n)
	}
}

func TestPlugin_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"missing directory", filepath.Join(t.TempDir(), "nope", "config.toml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Config{Path: tt.path})
			err := p.Initialize(context.Background(), wsclient.PluginConfig{})
			if err == nil {
				p.Shutdown(context.Background())
				t.Fatal("Initialize succeeded, want error")
			}
			if tt.path == "" && !errors.Is(err, ErrNoPath) {
				t.Errorf("error = %v, want ErrNoPath", err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	if got := DefaultConfig().DebounceDelay; got != 100*time.Millisecond {
		t.Errorf("DebounceDelay = %s", got)
	}
	if p := New(Config{}); p.debounceDelay != 100*time.Millisecond {
		t.Errorf("New debounce = %s", p.debounceDelay)
	}
}
