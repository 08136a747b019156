package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// FormatFromEnv reads LOG_FORMAT. Anything other than "json" yields FormatText.
func FormatFromEnv() Format {
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

// LevelFromEnv reads LOG_LEVEL (debug, info, warn, error). Default: info.
func LevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to stdout in the given format at the LOG_LEVEL level.
func New(format Format) *slog.Logger {
	return NewWithWriter(os.Stdout, format, LevelFromEnv())
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, format Format, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		// Add source code location when debugging
		AddSource: level <= slog.LevelDebug,
	}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewLogger creates a JSON logger on stdout.
func NewLogger() *slog.Logger {
	return New(FormatJSON)
}

// NewTextLogger creates a human-readable text logger on stdout.
func NewTextLogger() *slog.Logger {
	return New(FormatText)
}

// FromContext retrieves the logger from the context, or returns the default logger if not found.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"
