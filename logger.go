package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// NewLogger returns a structured slog.Logger with the given level, tagged with the run's
// session id. Interactive terminals get the text handler, anything else JSON lines.
func NewLogger(level slog.Leveler, session string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if fd := os.Stdout.Fd(); isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(h).With("session", session)
}
