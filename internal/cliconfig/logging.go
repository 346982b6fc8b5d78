package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/alyoongchat/msgsend/pkg/log"
)

// Logger returns the CLI logger writing to stderr at the given level.
// An unknown level falls back to info and is reported as an error.
func Logger(level string) (zerolog.Logger, error) {
	lvl, err := log.ParseLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
	return logger, err
}
