// Package logging configures the global zerolog logger used across pageguard.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level  string
	Pretty bool
}

// Setup configures the global zerolog logger. Pretty output goes to stderr so
// command output on stdout stays machine-readable.
func Setup(cfg Config) {
	var output io.Writer = os.Stderr

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.WarnLevel
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// RedactKey shortens an API key to a loggable prefix. Keys are never written
// to logs in full.
func RedactKey(key string) string {
	if len(key) <= 6 {
		return "***"
	}
	return key[:6] + "..."
}
