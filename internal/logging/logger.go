package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the handler used to render records.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// New creates the application logger.
// It writes to Stderr so command output on Stdout stays machine-readable.
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, level, FormatText)
}

// NewWithWriter creates a logger writing to w in the given format.
// The "error" key is standardized to "err".
func NewWithWriter(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps debug, info, warn and error (case-insensitive) to a slog level.
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
