package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
)

type contextKey int

const (
	eventIDKey contextKey = iota
)

// GenerateEventID creates a new 16 character hex id for one handled event.
func GenerateEventID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b)
}

// WithEventID returns a new context carrying the given event id.
func WithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, eventIDKey, eventID)
}

// NewEventContext derives a context with a freshly generated event id.
func NewEventContext(parent context.Context) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return WithEventID(parent, GenerateEventID())
}

// EventIDFromContext extracts the event id from the context.
// Returns empty string if none is set.
func EventIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(eventIDKey).(string); ok {
		return id
	}
	return ""
}

// LoggerFromContext returns a logger tagged with the event id from ctx.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := Logger()
	if id := EventIDFromContext(ctx); id != "" {
		logger = logger.With(KeyEventID, id)
	}
	return logger
}
