// Package logging is the structured logger shared by the CLI and the
// daemon: a package-level slog.Logger that Init swaps between text and
// JSON output.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	Init(DefaultConfig())
}

// Config selects the handler built by Init.
type Config struct {
	Level     slog.Level
	JSON      bool
	Output    io.Writer // nil means stderr
	AddSource bool
}

// DefaultConfig logs info and above as text to stderr.
func DefaultConfig() Config {
	return Config{Level: slog.LevelInfo, Output: os.Stderr}
}

// DebugConfig logs everything as JSON with source positions.
func DebugConfig() Config {
	return Config{Level: slog.LevelDebug, JSON: true, Output: os.Stderr, AddSource: true}
}

// ParseLevel maps a level name from configuration to a slog level.
// Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Init replaces the package logger.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}

	var h slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.JSON {
		h = slog.NewJSONHandler(out, opts)
	}
	current.Store(slog.New(h))
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return current.Load()
}

// Component returns the package logger tagged with a component name, for
// messages that come from a library rather than from our own code.
func Component(name string) *slog.Logger {
	return Logger().With(KeyComponent, name)
}

func Info(msg string, args ...any) { Logger().Info(msg, args...) }
func DebugLog(msg string, args ...any) { Logger().Debug(msg, args...) }
func Warn(msg string, args ...any) { Logger().Warn(msg, args...) }
func Error(msg string, args ...any) { Logger().Error(msg, args...) }

// The Context variants add the event id carried by ctx, if any.

func InfoContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).InfoContext(ctx, msg, args...)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).DebugContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).ErrorContext(ctx, msg, args...)
}

// Attribute keys used across packages.
const (
	KeyEventID      = "event_id"
	KeyComponent    = "component"
	KeyDuration     = "duration_ms"
	KeyError        = "error"
	KeyEvent        = "event"
	KeyEffect       = "effect"
	KeyDevice       = "device"
	KeyTimer        = "timer"
	KeyChannel      = "channel"
	KeyNotification = "notification"
	KeyRepeatCount  = "repeat_count"
	KeyRule         = "rule"
	KeyState        = "state"
	KeyTopic        = "topic"
	KeyWebhook      = "webhook"
	KeyStatus       = "status"
	KeyCount        = "count"
)
