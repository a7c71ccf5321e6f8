// Package log builds the process logger from application config.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pagekeep/doclink/internal/config"
)

// NewLogger builds the process logger on stdout. The configured format
// selects the handler and the configured level filters records.
func NewLogger(cfg config.AppConfig) *slog.Logger {
	return New(os.Stdout, cfg.LogFormat(), cfg.LogLevel())
}

// New builds a logger writing to w. The terminal handler is the default;
// LogFormatJSON emits line-delimited JSON for log collectors.
func New(w io.Writer, format config.LogFormat, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(newTerminalHandler(w, opts))
}

// ParseLevel maps a level name to its slog level. Unknown names fall back
// to info rather than failing: a bad LOG_LEVEL must not keep the process
// from starting.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
