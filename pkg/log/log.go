// Package log carries the process-wide structured logger.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(newLogger(Options{}))
}

// Options configures the logger.
type Options struct {
	// Verbose enables debug and info output.
	Verbose bool
	// JSONFormat switches the handler to JSON lines.
	JSONFormat bool
	// Stderr is the destination (defaults to os.Stderr).
	Stderr io.Writer
}

// Init replaces the global logger.
func Init(opts Options) {
	l := newLogger(opts)
	logger.Store(l)
	slog.SetDefault(l)
}

func newLogger(opts Options) *slog.Logger {
	w := opts.Stderr
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if opts.JSONFormat {
		h = slog.NewJSONHandler(w, handlerOpts)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(h).With("prog", "inactive")
}

// IsJSONFormat reports whether name selects the JSON handler.
func IsJSONFormat(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), "json")
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	logger.Load().Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	logger.Load().Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	logger.Load().Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	logger.Load().Error(msg, args...)
}

// With returns a logger with additional context.
func With(args ...any) *slog.Logger {
	return logger.Load().With(args...)
}
