// Package logger builds the root zerolog logger and the tagged children the
// subsystems log through.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger, writing JSON to stdout at the given level.
// Unrecognized levels fall back to info; pretty switches to the console
// writer for local runs.
func New(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// Service tags a child logger for a long-running service component.
func Service(base zerolog.Logger, name string) zerolog.Logger {
	return tagged(base, "service", name)
}

// Handler tags a child logger for an HTTP handler group.
func Handler(base zerolog.Logger, name string) zerolog.Logger {
	return tagged(base, "handler", name)
}

// Engine tags a child logger for an analysis engine.
func Engine(base zerolog.Logger, name string) zerolog.Logger {
	return tagged(base, "engine", name)
}

// Repository tags a child logger for a storage repository.
func Repository(base zerolog.Logger, name string) zerolog.Logger {
	return tagged(base, "repository", name)
}

// Client tags a child logger for an outbound API client.
func Client(base zerolog.Logger, name string) zerolog.Logger {
	return tagged(base, "client", name)
}

func tagged(base zerolog.Logger, key, name string) zerolog.Logger {
	return base.With().Str(key, name).Logger()
}
