// Package logger builds the zerolog loggers handed to every component.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level      string `yaml:"level"`
	Debug      bool   `yaml:"debug"`
	Output     string `yaml:"output"` // "stdout" | "stderr" | "console"
	TimeFormat string `yaml:"time_format"`
}

// New returns a JSON logger configured from cfg.  Output "console" writes
// human-readable lines to stderr, which is what the CLI uses by default.
func New(cfg Config) (zerolog.Logger, error) {
	var out io.Writer = os.Stdout

	switch cfg.Output {
	case "stderr":
		out = os.Stderr
	case "console":
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	} else if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), err
		}
	}

	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	} else {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// WithComponent tags l with a component name.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

// Nop discards everything.  Used by tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
