package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				URL:            "wss://file.example.com",
				Namespace:      "versus",
				Heartbeat:      "2s",
				MaxMissed:      5,
				ReconnectFloor: "500ms",
				WatchConfig:    &trueVal,
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				URL:            "wss://file.example.com",
				Namespace:      "versus",
				Heartbeat:      2 * time.Second,
				MaxMissed:      5,
				ReconnectFloor: 500 * time.Millisecond,
				WatchConfig:    true,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				URL:       "wss://file.example.com",
				Namespace: "file-ns",
			},
			changed: map[string]bool{"url": true},
			initial: Config{URL: "ws://flag.example.com"},
			expected: Config{
				URL:       "ws://flag.example.com",
				Namespace: "file-ns",
			},
		},
		{
			name:       "ignores zero values",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    Config{URL: "ws://keep", MaxMissed: 3},
			expected:   Config{URL: "ws://keep", MaxMissed: 3},
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{FlushInterval: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
url = "wss://play.example.com"
namespace = "versus"
code = "abcd"
token_placement = "replace"
heartbeat = "1500ms"
max_missed = 4
watch_config = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}
	if fc.URL != "wss://play.example.com" || fc.Namespace != "versus" || fc.Code != "abcd" {
		t.Errorf("target fields = %+v", fc)
	}
	if fc.Token != "replace" || fc.Heartbeat != "1500ms" || fc.MaxMissed != 4 {
		t.Errorf("tuning fields = %+v", fc)
	}
	if fc.WatchConfig == nil || !*fc.WatchConfig {
		t.Error("watch_config not parsed")
	}
}

func TestLoadFileConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFileConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("missing file: expected error")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("url = "), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFileConfig(bad); err == nil {
		t.Error("malformed file: expected error")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if path == "" {
		t.Skip("no home directory")
	}
	if !strings.HasSuffix(path, filepath.Join(".wsclient", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %q", path)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x")
	if FileExists(path) {
		t.Error("FileExists on missing file = true")
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !FileExists(path) {
		t.Error("FileExists on present file = false")
	}
}
