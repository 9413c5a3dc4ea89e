package model

import (
	"strings"
	"time"
)

// ScheduleRule is a recurring time window that turns an unanswered start
// notification into a "yes". StartTime and EndTime are 24-hour "HH:mm"
// strings; a StartTime later than EndTime wraps past midnight.
type ScheduleRule struct {
	ID        string   `json:"id"`
	Days      []string `json:"days"`
	StartTime string   `json:"start"`
	EndTime   string   `json:"end"`
}

// DayAbbrevs lists the weekday abbreviations in time.Weekday order.
var DayAbbrevs = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DayAbbrev returns the short US weekday name used in rule day sets.
func DayAbbrev(d time.Weekday) string {
	return DayAbbrevs[int(d)%7]
}

// HasDay reports whether the rule applies on the given weekday abbreviation.
func (r ScheduleRule) HasDay(day string) bool {
	for _, d := range r.Days {
		if d == day {
			return true
		}
	}
	return false
}

// DaysLabel returns the day set as a comma separated list.
func (r ScheduleRule) DaysLabel() string {
	if len(r.Days) == 0 {
		return "-"
	}
	return strings.Join(r.Days, ",")
}

// ShortID returns the first eight characters of the rule id.
func (r ScheduleRule) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}
