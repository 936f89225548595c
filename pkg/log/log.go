// Package log provides the process-wide structured logger for nitpicker.
//
// Call sites use key/value pairs:
//
//	log.Info("rules loaded", "count", len(rules))
//
// The logger is a clog.Logger over a log/slog text handler, so the same
// logger can be attached to a context with WithContext and recovered by
// packages that only see a context.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/chainguard-dev/clog"
)

const (
	// LevelEnv is the environment variable consulted for the default log level
	LevelEnv = "NITPICKER_LOG_LEVEL"

	// DefaultLevel is used when no level is configured
	DefaultLevel = "info"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, slog.LevelInfo)
)

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (expected debug, info, warn or error)", level)
	}
}

// Setup replaces the process logger with one writing to w at the given level.
func Setup(w io.Writer, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w, lvl)
	return nil
}

func newLogger(w io.Writer, level slog.Level) *clog.Logger {
	return clog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Logger returns the current process logger.
func Logger() *clog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// WithContext attaches the process logger to ctx.
func WithContext(ctx context.Context) context.Context {
	return clog.WithLogger(ctx, Logger())
}

// FromContext returns the logger attached to ctx, or the clog default.
func FromContext(ctx context.Context) *clog.Logger {
	return clog.FromContext(ctx)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}
