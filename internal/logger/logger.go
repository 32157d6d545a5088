// Package logger sets up structured logging for the kiosk process.
package logger

import (
	"io"
	"log/slog"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel maps a level name to a slog.Level. Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Setup configures the global slog.Logger. Records go to console as text and,
// when logFile is non-nil, to logFile as JSON lines.
func Setup(level string, console io.Writer, logFile io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	handlers := []slog.Handler{slog.NewTextHandler(console, opts)}
	if logFile != nil {
		handlers = append(handlers, slog.NewJSONHandler(logFile, opts))
	}

	logger := slog.New(slogmulti.Fanout(handlers...))

	// Set as global default so components constructed without a logger share it.
	slog.SetDefault(logger)

	return logger
}

// Discard returns a logger that drops every record. Used by tests and CLI paths
// that print their own output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
