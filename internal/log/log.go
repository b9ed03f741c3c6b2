// Package log holds the process wide slog setup and the helpers that carry a
// logger through a context.
package log

import (
	"context"
	"log/slog"
	"os"
)

// Debug switches the default logger to debug level. It is set from the
// command line before InitializeDefaultLogger is called.
var Debug bool

type loggerCtxKey struct{}

// GetLogLevel returns the level implied by the Debug switch.
func GetLogLevel() slog.Level {
	if Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// NewDefaultHandler returns the text handler used by InitializeDefaultLogger.
func NewDefaultHandler() slog.Handler {
	return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: GetLogLevel()})
}

// InitializeDefaultLogger installs the default logger. Each wrap function
// decorates the handler, innermost first.
func InitializeDefaultLogger(wraps ...func(slog.Handler) slog.Handler) {
	h := NewDefaultHandler()
	for _, w := range wraps {
		h = w(h)
	}
	slog.SetDefault(slog.New(h))
}

func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerCtxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
