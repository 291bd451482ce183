package transport

import (
	"errors"
	"io"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transport bool
		lost      bool
	}{
		{"plain", NewError("read", io.ErrUnexpectedEOF), true, false},
		{"lost with cause", Lost("read", io.ErrUnexpectedEOF), true, true},
		{"lost without cause", Lost("dial", nil), true, true},
		{"not open", NewError("send", ErrNotOpen), true, false},
		{"foreign", io.EOF, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, ErrTransport); got != tt.transport {
				t.Errorf("Is(ErrTransport) = %v, want %v", got, tt.transport)
			}
			if got := IsConnectionLost(tt.err); got != tt.lost {
				t.Errorf("IsConnectionLost() = %v, want %v", got, tt.lost)
			}
		})
	}
}

func TestLost_KeepsCause(t *testing.T) {
	err := Lost("read", io.ErrUnexpectedEOF)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Lost() dropped its cause: %v", err)
	}
}
