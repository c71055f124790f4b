// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a text logger on stderr as the default logger. verbose
// forces debug level regardless of level.
func Setup(level slog.Level, verbose bool) *slog.Logger {
	return SetupWriter(os.Stderr, level, verbose)
}

func SetupWriter(w io.Writer, level slog.Level, verbose bool) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
