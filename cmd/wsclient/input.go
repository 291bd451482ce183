package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

var errEmptyLine = errors.New("empty line")

// parseLine splits "<type> [json-payload]". A missing payload sends none.
func parseLine(line string) (string, json.RawMessage, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil, errEmptyLine
	}
	typ, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return typ, nil, nil
	}
	if !json.Valid([]byte(rest)) {
		return "", nil, fmt.Errorf("payload for %q is not valid JSON", typ)
	}
	return typ, json.RawMessage(rest), nil
}

type sender interface {
	Send(typ string, payload any) error
}

// readInput sends one message per input line until r is exhausted or ctx
// is cancelled.
func readInput(ctx context.Context, r io.Reader, s sender, logger zerolog.Logger) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		typ, payload, err := parseLine(scanner.Text())
		if errors.Is(err, errEmptyLine) {
			continue
		}
		if err != nil {
			logger.Warn().Err(err).Msg("skipping input line")
			continue
		}

		// A nil RawMessage inside an interface is not a nil payload.
		var p any
		if payload != nil {
			p = payload
		}
		if err := s.Send(typ, p); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		logger.Debug().Str("type", typ).Msg("queued message")
	}
	return scanner.Err()
}
