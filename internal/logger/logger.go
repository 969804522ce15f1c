package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a structured logger wrapper around slog
type Logger struct {
	*slog.Logger
}

// ParseLevel maps a config log level onto slog. Unknown values fall back to info
// and report ok=false.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// New creates a JSON logger at the given level writing to w.
// A nil writer means stdout.
func New(level string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	logLevel, _ := ParseLevel(level)

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewJSONHandler(w, opts)
	return &Logger{
		Logger: slog.New(handler),
	}
}

// Discard returns a logger that drops everything, for tests and headless tools
func Discard() *Logger {
	return New("error", io.Discard)
}

// WithFields creates a child logger with additional fields
func (l *Logger) WithFields(fields ...any) *Logger {
	return &Logger{
		Logger: l.With(fields...),
	}
}
