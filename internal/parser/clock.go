package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// clockPattern matches "22", "22:30", "10pm", "10:30 pm" and "7.45am".
var clockPattern = regexp.MustCompile(`(?i)^(\d{1,2})(?:[:.](\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)?$`)

// ParseClock parses a time of day and returns it as "HH:mm". Besides
// 24-hour and am/pm forms it accepts "noon", "midnight" and anything
// go-dateparser reads as a time of day, such as "half past ten".
func ParseClock(input string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "":
		return "", NewClockError(input)
	case "noon", "midday":
		return "12:00", nil
	case "midnight":
		return "00:00", nil
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		suffix := strings.ReplaceAll(m[3], ".", "")
		if suffix != "" {
			if hour < 1 || hour > 12 {
				return "", NewClockError(input)
			}
			hour %= 12
			if suffix == "pm" {
				hour += 12
			}
		}
		if hour > 23 || minute > 59 {
			return "", NewClockError(input)
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), nil
	}

	// A fixed reference day keeps relative phrases from shifting the clock.
	ref := time.Date(2000, 1, 1, 0, 0, 0, 0, time.Local)
	result, err := dateparser.Parse(&dateparser.Configuration{CurrentTime: ref}, input)
	if err != nil || result.Time.IsZero() {
		return "", NewClockError(input)
	}
	return result.Time.Format("15:04"), nil
}
