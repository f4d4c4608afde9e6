package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger builds the slog logger every binary installs as default.
// Logs go to stderr so the docqa CLI keeps stdout for rendered answers;
// service tags records as "api", "worker" or "docqa".
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
