package parser

import (
	"strings"

	"github.com/manav03panchal/babyreminder/internal/model"
)

// dayGroups are named sets of days.
var dayGroups = map[string][]string{
	"daily":    model.DayAbbrevs,
	"everyday": model.DayAbbrevs,
	"all":      model.DayAbbrevs,
	"weekdays": {"Mon", "Tue", "Wed", "Thu", "Fri"},
	"weekends": {"Sun", "Sat"},
	"weekend":  {"Sun", "Sat"},
}

// ParseDays parses a comma or space separated day list into rule day
// abbreviations. Items may be names ("monday", "Tue"), groups
// ("weekdays", "daily") or ranges ("mon-fri", "fri-mon" wraps).
func ParseDays(input string) ([]string, error) {
	fields := strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	if len(fields) == 0 {
		return nil, NewDaysError(input)
	}

	seen := make(map[string]bool)
	for _, f := range fields {
		if group, ok := dayGroups[f]; ok {
			for _, d := range group {
				seen[d] = true
			}
			continue
		}
		if from, to, ok := strings.Cut(f, "-"); ok {
			start, ok1 := dayIndex(from)
			end, ok2 := dayIndex(to)
			if !ok1 || !ok2 {
				return nil, NewDaysError(input)
			}
			for i := start; ; i = (i + 1) % 7 {
				seen[model.DayAbbrevs[i]] = true
				if i == end {
					break
				}
			}
			continue
		}
		i, ok := dayIndex(f)
		if !ok {
			return nil, NewDaysError(input)
		}
		seen[model.DayAbbrevs[i]] = true
	}

	days := make([]string, 0, len(seen))
	for _, d := range model.DayAbbrevs {
		if seen[d] {
			days = append(days, d)
		}
	}
	return days, nil
}

// dayIndex maps a day name or prefix of at least two letters to its
// time.Weekday index.
func dayIndex(name string) (int, bool) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	if len(name) < 2 {
		return 0, false
	}
	full := []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	match := -1
	for i, f := range full {
		if strings.HasPrefix(f, name) {
			if match >= 0 {
				return 0, false
			}
			match = i
		}
	}
	return match, match >= 0
}
