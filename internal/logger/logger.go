package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Level  string
	Format string
	Writer io.Writer
}

// New builds the process logger: colored lines for local runs, JSON for
// anything that ships logs elsewhere.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(NewPrettyHandler(w, handlerOpts))
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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
