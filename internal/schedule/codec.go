package schedule

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/model"
)

// codecVersion tags every encoded rule so the format can evolve.
const codecVersion = 1

type record struct {
	V     int      `json:"v"`
	ID    string   `json:"id"`
	Days  []string `json:"days"`
	Start string   `json:"start"`
	End   string   `json:"end"`
}

// Encode serializes a rule as a tagged JSON record.
func Encode(rule model.ScheduleRule) (string, error) {
	days := rule.Days
	if days == nil {
		days = []string{}
	}
	b, err := json.Marshal(record{
		V:     codecVersion,
		ID:    rule.ID,
		Days:  days,
		Start: rule.StartTime,
		End:   rule.EndTime,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a rule from its JSON record, or from the legacy
// "id|day,day|HH:mm|HH:mm" form.
func Decode(s string) (model.ScheduleRule, error) {
	if strings.HasPrefix(strings.TrimSpace(s), "{") {
		return decodeRecord(s)
	}
	return decodeLegacy(s)
}

// IsLegacy reports whether s uses the pipe-delimited format.
func IsLegacy(s string) bool {
	return !strings.HasPrefix(strings.TrimSpace(s), "{")
}

func decodeRecord(s string) (model.ScheduleRule, error) {
	var rec record
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return model.ScheduleRule{}, fmt.Errorf("%w: %v", errors.ErrMalformedRule, err)
	}
	if rec.V != codecVersion {
		return model.ScheduleRule{}, fmt.Errorf("%w: unsupported version %d", errors.ErrMalformedRule, rec.V)
	}
	if rec.ID == "" {
		return model.ScheduleRule{}, fmt.Errorf("%w: missing id", errors.ErrMalformedRule)
	}
	days := rec.Days
	if days == nil {
		days = []string{}
	}
	return model.ScheduleRule{ID: rec.ID, Days: days, StartTime: rec.Start, EndTime: rec.End}, nil
}

func decodeLegacy(s string) (model.ScheduleRule, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 4 {
		return model.ScheduleRule{}, fmt.Errorf("%w: expected 4 fields, got %d", errors.ErrMalformedRule, len(parts))
	}
	days := []string{}
	if strings.TrimSpace(parts[1]) != "" {
		days = strings.Split(parts[1], ",")
	}
	return model.ScheduleRule{ID: parts[0], Days: days, StartTime: parts[2], EndTime: parts[3]}, nil
}

// DecodeAll decodes every entry, collecting one error per malformed entry
// instead of stopping.
func DecodeAll(entries []string) ([]model.ScheduleRule, []error) {
	rules := make([]model.ScheduleRule, 0, len(entries))
	var errs []error
	for _, e := range entries {
		rule, err := Decode(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rules = append(rules, rule)
	}
	return rules, errs
}
