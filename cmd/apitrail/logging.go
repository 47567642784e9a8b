package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// newLogger builds the CLI's console logger. The core packages stay silent
// and report through errors; logging lives at this boundary only.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
