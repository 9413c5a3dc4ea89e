package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// periodRegex matches period expressions like "this week", "last month".
var periodRegex = regexp.MustCompile(`(?i)^(this|current|last|previous)\s+(hour|day|week|month|year)$`)

// ParseTimestamp parses a natural language timestamp relative to now.
func ParseTimestamp(input string) (time.Time, error) {
	return ParseTimestampAt(input, time.Now())
}

// ParseTimestampAt parses a natural language timestamp relative to now.
// "this week" and similar periods resolve to the start of the period.
func ParseTimestampAt(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "now") {
		return now, nil
	}
	if m := periodRegex.FindStringSubmatch(input); m != nil {
		return periodStart(strings.ToLower(m[1]), strings.ToLower(m[2]), now), nil
	}

	result, err := dateparser.Parse(&dateparser.Configuration{CurrentTime: now}, input)
	if err != nil || result.Time.IsZero() {
		return time.Time{}, NewTimestampError(input)
	}
	return result.Time, nil
}

// ParseSince parses a lower time bound: a duration back from now ("2h",
// "7d") or a timestamp ("yesterday", "this week").
func ParseSince(input string, now time.Time) (time.Time, error) {
	if IsDurationLike(input) {
		return now.Add(-ParseDuration(input).Duration), nil
	}
	return ParseTimestampAt(input, now)
}

func periodStart(modifier, period string, now time.Time) time.Time {
	previous := modifier == "last" || modifier == "previous"
	loc := now.Location()

	switch period {
	case "hour":
		t := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, loc)
		if previous {
			t = t.Add(-time.Hour)
		}
		return t
	case "day":
		t := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		if previous {
			t = t.AddDate(0, 0, -1)
		}
		return t
	case "week":
		// Weeks start on Monday.
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		t := time.Date(now.Year(), now.Month(), now.Day()-weekday+1, 0, 0, 0, 0, loc)
		if previous {
			t = t.AddDate(0, 0, -7)
		}
		return t
	case "month":
		t := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		if previous {
			t = t.AddDate(0, -1, 0)
		}
		return t
	default:
		t := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		if previous {
			t = t.AddDate(-1, 0, 0)
		}
		return t
	}
}
