// Package logging builds the process logger. Logs go to stderr by default
// so the stdio MCP transport keeps stdout clean for protocol frames; a file
// target adds size-based rotation.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/config"
)

// New returns a logger for the given settings and a close function for any
// file writer it opened. Unknown levels fall back to info.
func New(cfg config.Logging) (*slog.Logger, func() error) {
	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		w = rotator
		closeFn = rotator.Close
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})
	return slog.New(handler), closeFn
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
