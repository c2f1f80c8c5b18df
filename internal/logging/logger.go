package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Option configures New.
type Option func(*config)

type config struct {
	format Format
	out    io.Writer
}

// WithFormat switches between text and JSON output.
func WithFormat(f Format) Option {
	return func(c *config) { c.format = f }
}

// WithOutput redirects the log stream.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.out = w
		}
	}
}

// New creates the application logger. It writes to stderr so stdout stays
// free for prompts and the MCP stdio transport, and reports errors under
// the "err" key.
func New(level slog.Level, opts ...Option) *slog.Logger {
	c := config{format: FormatText, out: os.Stderr}
	for _, opt := range opts {
		opt(&c)
	}
	ho := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if c.format == FormatJSON {
		return slog.New(slog.NewJSONHandler(c.out, ho))
	}
	return slog.New(slog.NewTextHandler(c.out, ho))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps LOG_LEVEL values such as "debug" or "WARN" to a level.
// An empty string is info.
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
