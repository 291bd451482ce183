package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantType    string
		wantPayload string
		wantErr     bool
	}{
		{"type only", "ping", "ping", "", false},
		{"object payload", `chat {"text":"hi"}`, "chat", `{"text":"hi"}`, false},
		{"string payload", `say "hello there"`, "say", `"hello there"`, false},
		{"surrounding space", "  move   [1,2]  ", "move", "[1,2]", false},
		{"invalid json", "chat {text}", "", "", true},
		{"blank", "   ", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, payload, err := parseLine(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLine(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if typ != tt.wantType || string(payload) != tt.wantPayload {
				t.Errorf("parseLine(%q) = %q, %q", tt.line, typ, payload)
			}
		})
	}
}

type fakeSender struct {
	types    []string
	payloads []any
	err      error
}

func (f *fakeSender) Send(typ string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.types = append(f.types, typ)
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestReadInput(t *testing.T) {
	input := strings.Join([]string{
		"ping",
		"",
		"chat {bad",
		`chat {"text":"hi"}`,
	}, "\n")

	s := &fakeSender{}
	if err := readInput(context.Background(), strings.NewReader(input), s, zerolog.Nop()); err != nil {
		t.Fatalf("readInput: %v", err)
	}

	if strings.Join(s.types, ",") != "ping,chat" {
		t.Fatalf("types = %v, want ping,chat", s.types)
	}
	if s.payloads[0] != nil {
		t.Errorf("payload without JSON = %#v, want nil", s.payloads[0])
	}
	if s.payloads[1] == nil {
		t.Error("chat payload missing")
	}
}

func TestReadInput_SendErrorStops(t *testing.T) {
	boom := errors.New("not running")
	s := &fakeSender{err: boom}
	err := readInput(context.Background(), strings.NewReader("a\nb\n"), s, zerolog.Nop())
	if !errors.Is(err, boom) {
		t.Fatalf("readInput error = %v, want %v", err, boom)
	}
}
