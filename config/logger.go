package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLogLevel parses debug, info, warn or error, case-insensitively.
func ParseLogLevel(level string) (slog.Level, error) {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", level, err)
	}

	return parsed, nil
}

// NewLogger creates the slog logger described by cfg, writing to w.
func NewLogger(cfg LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	options := &slog.HandlerOptions{Level: level}

	switch cfg.Format {
	case LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, options)), nil
	case LogFormatText, "":
		return slog.New(slog.NewTextHandler(w, options)), nil
	default:
		return nil, fmt.Errorf("%w: log format %q", ErrInvalidConfig, cfg.Format)
	}
}
