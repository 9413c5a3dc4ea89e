package parser

import (
	"testing"
	"time"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wednesday is 2026-10-14 15:20 local time.
var wednesday = time.Date(2026, 10, 14, 15, 20, 0, 0, time.Local)

// =============================================================================
// Clock Tests
// =============================================================================

func TestParseClock(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"22:00", "22:00"},
		{"7:05", "07:05"},
		{"07.45", "07:45"},
		{"22", "22:00"},
		{"10pm", "22:00"},
		{"10 PM", "22:00"},
		{"10:30pm", "22:30"},
		{"7:30am", "07:30"},
		{"12am", "00:00"},
		{"12pm", "12:00"},
		{"12:15 a.m.", "00:15"},
		{"noon", "12:00"},
		{"Midnight", "00:00"},
		{"  06:00 ", "06:00"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClockInvalid(t *testing.T) {
	for _, input := range []string{"", "24:00", "13pm", "0am", "7:60", "25"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseClock(input)
			require.Error(t, err)

			var pe *TimeParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "time", pe.Field)
		})
	}
}

// =============================================================================
// Days Tests
// =============================================================================

func TestParseDays(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"mon", []string{"Mon"}},
		{"Mon,Wed,Fri", []string{"Mon", "Wed", "Fri"}},
		{"friday monday", []string{"Mon", "Fri"}},
		{"weekdays", []string{"Mon", "Tue", "Wed", "Thu", "Fri"}},
		{"weekends", []string{"Sun", "Sat"}},
		{"daily", []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}},
		{"mon-wed", []string{"Mon", "Tue", "Wed"}},
		{"fri-mon", []string{"Sun", "Mon", "Fri", "Sat"}},
		{"tu,th", []string{"Tue", "Thu"}},
		{"mon,mon,weekends", []string{"Sun", "Mon", "Sat"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDays(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDaysInvalid(t *testing.T) {
	for _, input := range []string{"", "t", "s", "funday", "mon-xyz", " , "} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDays(input)
			assert.Error(t, err)
		})
	}
}

// =============================================================================
// Duration Tests
// =============================================================================

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		valid bool
	}{
		{"2h", 2 * time.Hour, true},
		{"90m", 90 * time.Minute, true},
		{"1h30m", 90 * time.Minute, true},
		{"2.5h", 150 * time.Minute, true},
		{"2 hours", 2 * time.Hour, true},
		{"1 hour 30 minutes", 90 * time.Minute, true},
		{"3 days", 72 * time.Hour, true},
		{"7d", 7 * 24 * time.Hour, true},
		{"4", 4 * time.Hour, true},
		{"", 0, false},
		{"0m", 0, false},
		{"soon", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r := ParseDuration(tt.input)
			assert.Equal(t, tt.valid, r.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, r.Duration)
			}
		})
	}
}

func TestIsDurationLike(t *testing.T) {
	assert.True(t, IsDurationLike("2h"))
	assert.True(t, IsDurationLike("7d"))
	assert.False(t, IsDurationLike("2 hours ago"))
	assert.False(t, IsDurationLike("yesterday"))
	assert.False(t, IsDurationLike(""))
}

// =============================================================================
// Timestamp Tests
// =============================================================================

func TestParseTimestampAt(t *testing.T) {
	got, err := ParseTimestampAt("now", wednesday)
	require.NoError(t, err)
	assert.Equal(t, wednesday, got)

	got, err = ParseTimestampAt("", wednesday)
	require.NoError(t, err)
	assert.Equal(t, wednesday, got)

	got, err = ParseTimestampAt("2 hours ago", wednesday)
	require.NoError(t, err)
	assert.WithinDuration(t, wednesday.Add(-2*time.Hour), got, time.Minute)
}

func TestParseTimestampPeriods(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"this hour", time.Date(2026, 10, 14, 15, 0, 0, 0, time.Local)},
		{"last hour", time.Date(2026, 10, 14, 14, 0, 0, 0, time.Local)},
		{"this day", time.Date(2026, 10, 14, 0, 0, 0, 0, time.Local)},
		{"last day", time.Date(2026, 10, 13, 0, 0, 0, 0, time.Local)},
		{"this week", time.Date(2026, 10, 12, 0, 0, 0, 0, time.Local)},
		{"last week", time.Date(2026, 10, 5, 0, 0, 0, 0, time.Local)},
		{"this month", time.Date(2026, 10, 1, 0, 0, 0, 0, time.Local)},
		{"previous month", time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)},
		{"this year", time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)},
		{"last year", time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestampAt(tt.input, wednesday)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	_, err := ParseTimestampAt("not a time at all", wednesday)
	require.Error(t, err)

	var pe *TimeParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "timestamp", pe.Field)
}

func TestParseSince(t *testing.T) {
	got, err := ParseSince("2h", wednesday)
	require.NoError(t, err)
	assert.Equal(t, wednesday.Add(-2*time.Hour), got)

	got, err = ParseSince("this week", wednesday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.Local), got)
}

// =============================================================================
// Error Tests
// =============================================================================

func TestTimeParseErrorFormat(t *testing.T) {
	err := NewClockError("25:00")
	assert.Equal(t, "invalid time '25:00': could not parse time of day", err.Error())

	formatted := err.FormatWithExamples()
	assert.Contains(t, formatted, "Valid examples:")
	assert.Contains(t, formatted, "  - 10pm")
	assert.Contains(t, formatted, "24-hour")
}

func TestToUserError(t *testing.T) {
	ue := NewDaysError("funday").ToUserError()
	assert.Equal(t, "days", ue.Field)
	assert.Equal(t, "funday", ue.Value)
	assert.Contains(t, ue.Suggestion, "weekdays")

	noSuggestion := &TimeParseError{Field: "time", Input: "x", Message: "bad", Examples: ClockExamples}
	assert.Contains(t, noSuggestion.ToUserError().Suggestion, "Try: 07:30, 22:00, 7:30am")
}

func TestAsUserError(t *testing.T) {
	_, err := ParseDays("funday")
	assert.True(t, errors.IsUserError(AsUserError(err)))

	plain := errors.ErrTimeout
	assert.Equal(t, plain, AsUserError(plain))
}
