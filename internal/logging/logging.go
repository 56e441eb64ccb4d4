// Package logging builds the process-wide structured logger. Terminals
// get human-readable text output, everything else gets JSON so the logs
// stay machine-parseable when redirected.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/mattn/go-isatty"
)

// New creates a structured logger at the given level. The handler format
// follows the destination: text for a terminal, JSON otherwise.
func New(level string, output io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if isTerminal(output) {
		return slog.New(slog.NewTextHandler(output, opts))
	}
	return slog.New(slog.NewJSONHandler(output, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(output io.Writer) bool {
	f, ok := output.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
