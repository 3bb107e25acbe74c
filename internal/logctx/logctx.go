// Package logctx carries the run's logger through context.Context, so
// pipeline stages can log with shared fields without a process-wide
// singleton.
package logctx

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

// loggerKey is the private context key type; a private type prevents
// collisions with other packages.
type loggerKey struct{}

// Nop returns a logger that discards everything. Used as the fallback
// when no logger was attached.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// Console returns a human-readable logger writing to stderr at the given
// level.
func Console(level zerolog.Level) zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// WithLogger returns a new context with the given logger attached.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext extracts the logger from the context, or a no-op logger
// when none is attached. Never panics.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return Nop()
	}

	if logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
		return logger
	}

	return Nop()
}
