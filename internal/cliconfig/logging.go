package cliconfig

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/irothenbaum/websocket-client/pkg/log"
)

// Logger returns the console logger the CLI writes to stderr.
// An unknown level falls back to info and is reported as an error.
func Logger(level string) (zerolog.Logger, error) {
	return newLogger(os.Stderr, level)
}

func newLogger(out io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.NewConsoleLogger(out, zerolog.InfoLevel), err
	}
	return log.NewConsoleLogger(out, lvl), nil
}
