// Package logging configures the zerolog logger shared by the binaries.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger with the given level ("debug", "info", "warn",
// "error") and format ("json" or "console"). Unknown levels fall back to
// info rather than failing startup.
func New(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out = os.Stderr
	logger := zerolog.New(out)
	if format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"})
	}
	return logger.Level(lvl).With().Timestamp().Logger()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
