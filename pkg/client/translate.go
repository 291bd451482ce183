package client

import (
	"fmt"

	"github.com/irothenbaum/websocket-client/pkg/envelope"
	"github.com/irothenbaum/websocket-client/pkg/events"
)

// Translator turns an envelope of an application-defined type into an
// event. Returning a nil event and nil error drops the envelope silently.
type Translator interface {
	Translate(env envelope.Envelope) (events.Event, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(env envelope.Envelope) (events.Event, error)

func (f TranslatorFunc) Translate(env envelope.Envelope) (events.Event, error) {
	return f(env)
}

// UnrecognizedTypeError is returned by the default translator.
type UnrecognizedTypeError struct {
	Type string
}

func (e *UnrecognizedTypeError) Error() string {
	return fmt.Sprintf("unrecognized message type %q", e.Type)
}

type rejectAll struct{}

func (rejectAll) Translate(env envelope.Envelope) (events.Event, error) {
	return nil, &UnrecognizedTypeError{Type: env.Type}
}

// Payload shapes of the protocol messages.
type (
	initPayload struct {
		ConnectCode string `json:"connectCode"`
	}
	waitingPayload struct {
		ConnectCode  string `json:"connectCode"`
		RecoveryCode string `json:"recoveryCode"`
	}
	readyPayload struct {
		RecoveryCode string `json:"recoveryCode"`
	}
)
