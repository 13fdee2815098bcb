package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// setupLogging installs the process-wide slog handler. Services pick it up
// through slog.Default when they are constructed, so this runs before any
// command builds its services.
func setupLogging(w io.Writer, level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("parsing --log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "console", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("unknown --log-format %q (want console or json)", format)
	}
	slog.SetDefault(slog.New(h))
	return nil
}
