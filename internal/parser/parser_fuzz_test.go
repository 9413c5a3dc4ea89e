package parser

import (
	"testing"
	"time"
)

// FuzzParseClock checks the clock parser never panics and only returns
// HH:MM values.
// Run with: go test ./internal/parser -fuzz=FuzzParseClock -fuzztime=30s
func FuzzParseClock(f *testing.F) {
	for _, seed := range []string{"07:30", "7:30", "7am", "5:30pm", "noon", "midnight", "24:00", "", "12:60"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		out, err := ParseClock(input)
		if err != nil {
			return
		}
		if _, perr := time.Parse("15:04", out); perr != nil {
			t.Fatalf("ParseClock(%q) = %q, not HH:MM", input, out)
		}
	})
}

// FuzzParseDays checks the day parser never panics and never returns an
// empty set without an error.
// Run with: go test ./internal/parser -fuzz=FuzzParseDays -fuzztime=30s
func FuzzParseDays(f *testing.F) {
	for _, seed := range []string{"weekdays", "weekends", "daily", "mon,wed,fri", "Mon-Fri", "sat sun", "", ",,"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		days, err := ParseDays(input)
		if err == nil && len(days) == 0 {
			t.Fatalf("ParseDays(%q) returned no days and no error", input)
		}
	})
}

// FuzzParseTimestamp checks the timestamp parser never panics.
// Run with: go test ./internal/parser -fuzz=FuzzParseTimestamp -fuzztime=30s
func FuzzParseTimestamp(f *testing.F) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	for _, seed := range []string{"now", "tomorrow 8am", "monday 07:45", "2026-01-15 14:30", "in 5 minutes", "yesterday", ""} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		_, _ = ParseTimestampAt(input, now)
		_, _ = ParseSince(input, now)
	})
}
