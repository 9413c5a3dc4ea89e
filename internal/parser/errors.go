package parser

import (
	"fmt"
	"strings"

	"github.com/manav03panchal/babyreminder/internal/errors"
)

// TimeParseError represents a time parsing error with helpful suggestions.
type TimeParseError struct {
	Input      string
	Field      string
	Message    string
	Examples   []string
	Suggestion string
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Input, e.Message)
}

// FormatWithExamples returns the error message with example suggestions.
func (e *TimeParseError) FormatWithExamples() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Examples) > 0 {
		sb.WriteString("\n\nValid examples:\n")
		for _, ex := range e.Examples {
			sb.WriteString("  - ")
			sb.WriteString(ex)
			sb.WriteString("\n")
		}
	}
	if e.Suggestion != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Suggestion)
	}
	return sb.String()
}

// ClockExamples provides example time-of-day formats.
var ClockExamples = []string{
	"07:30",
	"22:00",
	"7:30am",
	"10pm",
	"noon",
}

// DaysExamples provides example day list formats.
var DaysExamples = []string{
	"mon,tue,wed",
	"weekdays",
	"weekends",
	"mon-fri",
	"daily",
}

// DurationExamples provides example duration formats.
var DurationExamples = []string{
	"90m",
	"2h",
	"1h30m",
	"3 days",
}

// TimestampExamples provides example timestamp formats.
var TimestampExamples = []string{
	"now",
	"friday 10pm",
	"yesterday at 3pm",
	"2 hours ago",
	"this week",
}

// NewClockError creates a time-of-day parse error with standard examples.
func NewClockError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "time",
		Message:    "could not parse time of day",
		Examples:   ClockExamples,
		Suggestion: "Use 24-hour HH:mm or a 12-hour time with am/pm.",
	}
}

// NewDaysError creates a day list parse error with standard examples.
func NewDaysError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "days",
		Message:    "could not parse day list",
		Examples:   DaysExamples,
		Suggestion: "Separate days with commas, or use weekdays, weekends or daily.",
	}
}

// NewDurationError creates a duration parse error with standard examples.
func NewDurationError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "duration",
		Message:    "could not parse duration",
		Examples:   DurationExamples,
		Suggestion: "Durations can be specified as days (d), hours (h) or minutes (m).",
	}
}

// NewTimestampError creates a timestamp parse error with standard examples.
func NewTimestampError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "timestamp",
		Message:    "could not parse time",
		Examples:   TimestampExamples,
		Suggestion: "Try natural language like 'friday 10pm' or '2 hours ago'.",
	}
}

// ToUserError converts a TimeParseError to a UserError for consistent handling.
func (e *TimeParseError) ToUserError() *errors.UserError {
	suggestion := e.Suggestion
	if len(e.Examples) > 0 && suggestion == "" {
		suggestion = fmt.Sprintf("Try: %s", strings.Join(e.Examples[:min(3, len(e.Examples))], ", "))
	}
	return errors.NewUserErrorWithField(e.Field, e.Input, e.Message, suggestion)
}

// AsUserError converts parse errors from this package to user errors and
// passes anything else through.
func AsUserError(err error) error {
	var pe *TimeParseError
	if errors.As(err, &pe) {
		return pe.ToUserError()
	}
	return err
}
