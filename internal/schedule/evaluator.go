// Package schedule decides whether a moment falls inside one of the user's
// recurring time windows, and persists those windows.
package schedule

import (
	"fmt"
	"time"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
)

// ParseClock parses a 24-hour "HH:mm" string into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, errors.InvalidInput(errors.ErrInvalidTime, "time", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes after midnight as "HH:mm".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Matches reports whether now falls inside the rule's window on now's weekday.
// Seconds are ignored. A window whose start equals its end is empty.
func Matches(rule model.ScheduleRule, now time.Time) (bool, error) {
	if !rule.HasDay(model.DayAbbrev(now.Weekday())) {
		return false, nil
	}

	start, err := ParseClock(rule.StartTime)
	if err != nil {
		return false, err
	}
	end, err := ParseClock(rule.EndTime)
	if err != nil {
		return false, err
	}

	cur := now.Hour()*60 + now.Minute()
	if start <= end {
		return start <= cur && cur < end, nil
	}
	// Overnight: the window covers [start, 24:00) and [00:00, end).
	return cur >= start || cur < end, nil
}

// IsWithinScheduledWindow reports whether any rule covers now. Rules with
// unparsable times are logged and skipped.
func IsWithinScheduledWindow(rules []model.ScheduleRule, now time.Time) bool {
	for _, rule := range rules {
		ok, err := Matches(rule, now)
		if err != nil {
			logging.Warn("skipping schedule rule with bad time",
				logging.KeyRule, rule.ID, logging.KeyError, err)
			continue
		}
		if ok {
			logging.DebugLog("schedule rule matched", logging.KeyRule, rule.ID)
			return true
		}
	}
	return false
}
