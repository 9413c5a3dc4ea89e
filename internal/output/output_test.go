package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/manav03panchal/babyreminder/internal/alarm"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/journal"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/reminder"
	"github.com/manav03panchal/babyreminder/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCLI() (*CLIFormatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewCLIFormatter(&Formatter{Writer: &buf, Format: FormatCLI, ColorMode: ColorNever}), &buf
}

// =============================================================================
// Formatter Tests
// =============================================================================

func TestNewFormatter(t *testing.T) {
	f := NewFormatter()
	assert.Equal(t, FormatCLI, f.Format)
	assert.Equal(t, ColorAuto, f.ColorMode)
	assert.False(t, f.IsJSON())
}

func TestFormatterIsColorEnabled(t *testing.T) {
	assert.True(t, (&Formatter{Format: FormatCLI, ColorMode: ColorAlways}).IsColorEnabled())
	assert.False(t, (&Formatter{Format: FormatCLI, ColorMode: ColorNever}).IsColorEnabled())
	assert.False(t, (&Formatter{Format: FormatPlain, ColorMode: ColorAlways}).IsColorEnabled(), "plain never styles")
	assert.False(t, (&Formatter{Format: FormatJSON, ColorMode: ColorAlways}).IsColorEnabled())

	var buf bytes.Buffer
	assert.False(t, (&Formatter{Writer: &buf, ColorMode: ColorAuto}).IsColorEnabled(), "buffer is not a terminal")
}

func TestFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf, Format: FormatJSON}
	require.NoError(t, f.JSON(map[string]int{"count": 2}))
	assert.Equal(t, "{\n  \"count\": 2\n}\n", buf.String())
	assert.True(t, f.IsJSON())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{time.Minute, "1m"},
		{90 * time.Second, "1m 30s"},
		{2 * time.Hour, "2h"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d))
	}
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2026, 10, 12, 10, 0, 0, 0, time.Local)
	assert.Equal(t, "in 45s", FormatRelative(now.Add(45*time.Second), now))
	assert.Equal(t, "3m ago", FormatRelative(now.Add(-3*time.Minute), now))
}

// =============================================================================
// CLI Tests
// =============================================================================

func TestCLIMessages(t *testing.T) {
	c, buf := newTestCLI()
	c.Success("done")
	c.Warning("careful")
	c.Error("broken")
	assert.Equal(t, "✓ done\n⚠ careful\n✗ broken\n", buf.String())
}

func TestPrintStatus(t *testing.T) {
	c, buf := newTestCLI()
	now := time.Date(2026, 10, 12, 10, 0, 0, 0, time.Local)
	session := model.Session{State: model.SessionAwaitingEndResponse, RepeatCount: 2}

	c.PrintStatus(&service.Status{
		Driving:      false,
		Session:      session,
		SessionLabel: session.Label(10),
		MaxRepeats:   10,
		Devices:      []string{"My Car"},
		Rules:        1,
		InWindow:     true,
		Settings:     model.Settings{EnableSound: true},
		Timers:       []alarm.Timer{{ID: reminder.TimerReminder, FireAt: now.Add(time.Minute)}},
		Daemon:       true,
		CheckedAt:    now,
	})

	out := buf.String()
	assert.Contains(t, out, "Reminding (2/10)")
	assert.Contains(t, out, "My Car")
	assert.Contains(t, out, "in window now")
	assert.Contains(t, out, "Timer reminder: 10:01 (in 1m)")
	assert.NotContains(t, out, "Daemon not running")
}

func TestPrintStatusWithoutDaemon(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintStatus(&service.Status{SessionLabel: "Idle"})

	out := buf.String()
	assert.Contains(t, out, "none (car mode only)")
	assert.Contains(t, out, "Daemon not running")
}

func TestPrintDevices(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintDevices(nil)
	assert.Contains(t, buf.String(), "No car devices")

	buf.Reset()
	c.PrintDevices([]string{"Car A", "Car B"})
	assert.Contains(t, buf.String(), "  Car A\n  Car B\n")
}

func TestPrintRules(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintRules([]model.ScheduleRule{{
		ID:        "0192f3a4-0000-7000-8000-000000000000",
		Days:      []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
		StartTime: "07:30",
		EndTime:   "09:00",
	}})

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "07:30")
	assert.Contains(t, out, "09:00")
}

func TestPrintWebhooksMasksURL(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintWebhooks([]*model.Webhook{{
		Name:    "family",
		Type:    "discord",
		URL:     "https://discord.com/api/webhooks/123456/secret-token",
		Enabled: true,
	}})

	out := buf.String()
	assert.Contains(t, out, "family")
	assert.Contains(t, out, "enabled")
	assert.NotContains(t, out, "secret-token")
}

func TestPrintTestResult(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintTestResult(&service.TestResult{Webhook: "family", Success: true, StatusCode: 204, DurationMs: 80})
	c.PrintTestResult(&service.TestResult{Webhook: "family", Error: "timeout"})

	assert.Equal(t, "✓ Webhook family responded 204 in 80ms\n✗ Webhook family failed: timeout\n", buf.String())
}

func TestPrintHistory(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintHistory([]journal.Entry{
		{Timestamp: time.Now(), Kind: "bluetooth_connected", Device: "My Car", Source: "mqtt", Effects: "show_notification(1)"},
		{Timestamp: time.Now(), Kind: "deny", Source: "http", Effects: "-", Error: "disk full"},
	})

	out := buf.String()
	assert.Contains(t, out, "bluetooth_connected (My Car)")
	assert.Contains(t, out, "- ! disk full")
}

func TestPrintTableAlignment(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintTable([]string{"A", "BB"}, []TableRow{{Columns: []string{"long", "x"}}})
	assert.Equal(t, "A     BB\n────  ──\nlong  x\n", buf.String())

	buf.Reset()
	c.PrintTable([]string{"A"}, nil)
	assert.Empty(t, buf.String())
}

// =============================================================================
// JSON Tests
// =============================================================================

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(errors.NewUserErrorWithField("days", "funday", "bad days", "use weekdays"))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "days", resp.Field)
	assert.Equal(t, "use weekdays", resp.Suggestion)

	plain := NewErrorResponse(errors.ErrTimeout)
	assert.Empty(t, plain.Suggestion)
}

func TestNewHistoryResponse(t *testing.T) {
	resp := NewHistoryResponse([]journal.Entry{
		{ID: 2, Timestamp: time.Now(), Kind: "confirm", Effects: "-"},
		{ID: 1, Timestamp: time.Now(), Kind: "deny", Effects: "-", Error: "boom"},
	})
	assert.Len(t, resp.Entries, 2)
	assert.Equal(t, 1, resp.Failed)
}

func TestJSONFormatterPrintResult(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf, Format: FormatJSON})
	require.NoError(t, j.PrintResult("device added"))

	var got ResultResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, "device added", got.Message)
}

func TestNewRulesResponse(t *testing.T) {
	resp := NewRulesResponse([]model.ScheduleRule{{ID: "a", Days: []string{"Sat"}, StartTime: "22:00", EndTime: "06:00"}})
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "22:00", resp.Rules[0].Start)
}
