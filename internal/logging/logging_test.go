package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Logger Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelInfo, cfg.Level)
	assert.False(t, cfg.JSON)
}

func TestDebugConfig(t *testing.T) {
	cfg := DebugConfig()
	assert.Equal(t, slog.LevelDebug, cfg.Level)
	assert.True(t, cfg.JSON)
	assert.True(t, cfg.AddSource)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestInit(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	t.Run("text_output", func(t *testing.T) {
		var buf bytes.Buffer
		Init(Config{Level: slog.LevelInfo, Output: &buf})

		Info("drive started", KeyDevice, "My Toyota")
		assert.Contains(t, buf.String(), "drive started")
		assert.Contains(t, buf.String(), "device=\"My Toyota\"")
		assert.False(t, Logger().Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("json_output", func(t *testing.T) {
		var buf bytes.Buffer
		Init(Config{Level: slog.LevelDebug, JSON: true, Output: &buf})
		assert.True(t, Logger().Enabled(context.Background(), slog.LevelDebug))

		DebugLog("timer scheduled", KeyTimer, "reminder")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "timer scheduled", entry["msg"])
		assert.Equal(t, "reminder", entry[KeyTimer])
	})

	t.Run("level_filters", func(t *testing.T) {
		var buf bytes.Buffer
		Init(Config{Level: slog.LevelWarn, Output: &buf})

		Info("hidden")
		Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("nil_output_uses_stderr", func(t *testing.T) {
		Init(Config{Level: slog.LevelInfo})
		assert.NotNil(t, Logger())
	})
}

func TestComponent(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	var buf bytes.Buffer
	Init(Config{Level: slog.LevelDebug, Output: &buf})
	Component("badger").Debug("compaction done", KeyState, "idle")
	assert.Contains(t, buf.String(), "component=badger")
	assert.Contains(t, buf.String(), "state=idle")
}

// =============================================================================
// Context Tests
// =============================================================================

func TestGenerateEventID(t *testing.T) {
	id1 := GenerateEventID()
	id2 := GenerateEventID()
	assert.Len(t, id1, 16)
	assert.NotEqual(t, id1, id2)
}

func TestEventIDFromContext(t *testing.T) {
	assert.Equal(t, "", EventIDFromContext(context.Background()))

	ctx := WithEventID(context.Background(), "abc123")
	assert.Equal(t, "abc123", EventIDFromContext(ctx))

	generated := NewEventContext(context.Background())
	assert.Len(t, EventIDFromContext(generated), 16)
}

func TestContextLoggingIncludesEventID(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	var buf bytes.Buffer
	Init(Config{Level: slog.LevelDebug, Output: &buf})

	ctx := WithEventID(context.Background(), "feedface")
	InfoContext(ctx, "handled")
	WarnContext(ctx, "warned")
	assert.Contains(t, buf.String(), "event_id=feedface")
}

// =============================================================================
// Masking Tests
// =============================================================================

func TestMaskURL(t *testing.T) {
	assert.Equal(t, "https://short.io", MaskURL("https://short.io"))
	assert.Equal(t, "https://discord.com/api/webhoo***",
		MaskURL("https://discord.com/api/webhooks/123/secret"))
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "", MaskValue(""))
	assert.Equal(t, "***", MaskValue("abc"))
	assert.Equal(t, "********", MaskValue("averylongsecret"))
}

func TestIsSensitiveField(t *testing.T) {
	assert.True(t, IsSensitiveField("password"))
	assert.True(t, IsSensitiveField("MQTT_PASSWORD"))
	assert.True(t, IsSensitiveField("auth_header"))
	assert.False(t, IsSensitiveField("device"))
}

func TestMaskArgs(t *testing.T) {
	args := MaskArgs([]any{"device", "My Toyota", "password", "hunter2", "token", 42})
	assert.Equal(t, "My Toyota", args[1])
	assert.Equal(t, "*******", args[3])
	assert.Equal(t, "********", args[5])

	assert.Equal(t, []any{"only"}, MaskArgs([]any{"only"}))
}

func TestMaskString(t *testing.T) {
	msg := MaskString("posting to https://hooks.slack.com/services/T000/B000/XXXX failed")
	assert.Contains(t, msg, "https://hooks.slack.com/servic***")
	assert.NotContains(t, msg, "XXXX")

	local := "http://localhost:8080/status"
	assert.Equal(t, local, MaskString(local))
}
