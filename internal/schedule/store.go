package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/storage"
)

// Store keeps schedule rules in the preference store as a set of encoded strings.
type Store struct {
	prefs storage.Store
}

// NewStore creates a rule store.
func NewStore(prefs storage.Store) *Store {
	return &Store{prefs: prefs}
}

func (s *Store) entries() []string {
	return s.prefs.GetStringSet(model.NSSchedule, model.KeyRules)
}

// Rules returns every decodable rule. Malformed entries are logged and skipped.
func (s *Store) Rules() []model.ScheduleRule {
	rules, errs := DecodeAll(s.entries())
	for _, err := range errs {
		logging.Warn("skipping malformed schedule rule", logging.KeyError, err)
	}
	return rules
}

// List returns the rules ordered by start time for display.
func (s *Store) List() []model.ScheduleRule {
	rules := s.Rules()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].StartTime != rules[j].StartTime {
			return rules[i].StartTime < rules[j].StartTime
		}
		return rules[i].ID < rules[j].ID
	})
	return rules
}

// Add validates and stores a new rule with a fresh id.
func (s *Store) Add(days []string, start, end string) (model.ScheduleRule, error) {
	if len(days) == 0 {
		return model.ScheduleRule{}, errors.InvalidInput(errors.ErrNoDays, "days", "")
	}
	for _, d := range days {
		if !isDayAbbrev(d) {
			return model.ScheduleRule{}, errors.InvalidInput(errors.ErrInvalidDay, "days", d)
		}
	}
	startMin, err := ParseClock(start)
	if err != nil {
		return model.ScheduleRule{}, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return model.ScheduleRule{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.ScheduleRule{}, errors.Wrap(err, "generating rule id")
	}

	rule := model.ScheduleRule{
		ID:        id.String(),
		Days:      orderDays(days),
		StartTime: FormatClock(startMin),
		EndTime:   FormatClock(endMin),
	}
	encoded, err := Encode(rule)
	if err != nil {
		return model.ScheduleRule{}, err
	}

	entries := append(s.entries(), encoded)
	if err := s.prefs.SetStringSet(model.NSSchedule, model.KeyRules, entries); err != nil {
		return model.ScheduleRule{}, errors.Wrap(err, "saving schedule rules")
	}
	logging.Info("schedule rule added", logging.KeyRule, rule.ID,
		"days", rule.DaysLabel(), "start", rule.StartTime, "end", rule.EndTime)
	return rule, nil
}

// Delete removes the rule whose id equals or uniquely starts with idOrPrefix.
func (s *Store) Delete(idOrPrefix string) (model.ScheduleRule, error) {
	entries := s.entries()

	matchIdx := -1
	var match model.ScheduleRule
	for i, e := range entries {
		rule, err := Decode(e)
		if err != nil {
			continue
		}
		if rule.ID == idOrPrefix {
			matchIdx, match = i, rule
			break
		}
		if idOrPrefix != "" && strings.HasPrefix(rule.ID, idOrPrefix) {
			if matchIdx >= 0 {
				return model.ScheduleRule{}, errors.InvalidInput(errors.ErrAmbiguousRule, "id", idOrPrefix)
			}
			matchIdx, match = i, rule
		}
	}
	if matchIdx < 0 {
		return model.ScheduleRule{}, errors.InvalidInput(errors.ErrRuleNotFound, "id", idOrPrefix)
	}

	remaining := append(entries[:matchIdx:matchIdx], entries[matchIdx+1:]...)
	if err := s.prefs.SetStringSet(model.NSSchedule, model.KeyRules, remaining); err != nil {
		return model.ScheduleRule{}, errors.Wrap(err, "saving schedule rules")
	}
	logging.Info("schedule rule deleted", logging.KeyRule, match.ID)
	return match, nil
}

// MigrateLegacy rewrites pipe-delimited entries as JSON records and returns
// how many were converted. Malformed entries are left untouched.
func (s *Store) MigrateLegacy() (int, error) {
	entries := s.entries()
	out := make([]string, 0, len(entries))
	converted := 0

	for _, e := range entries {
		if !IsLegacy(e) {
			out = append(out, e)
			continue
		}
		rule, err := Decode(e)
		if err != nil {
			logging.Warn("leaving malformed legacy rule in place", logging.KeyError, err)
			out = append(out, e)
			continue
		}
		encoded, err := Encode(rule)
		if err != nil {
			return 0, err
		}
		out = append(out, encoded)
		converted++
	}

	if converted == 0 {
		return 0, nil
	}
	if err := s.prefs.SetStringSet(model.NSSchedule, model.KeyRules, out); err != nil {
		return 0, errors.Wrap(err, "saving schedule rules")
	}
	logging.Info("migrated legacy schedule rules", logging.KeyCount, converted)
	return converted, nil
}

// InWindow reports whether now is inside any stored rule.
func (s *Store) InWindow(now time.Time) bool {
	return IsWithinScheduledWindow(s.Rules(), now)
}

func isDayAbbrev(d string) bool {
	for _, a := range model.DayAbbrevs {
		if a == d {
			return true
		}
	}
	return false
}

// orderDays deduplicates days and sorts them Sunday first.
func orderDays(days []string) []string {
	var out []string
	for _, a := range model.DayAbbrevs {
		for _, d := range days {
			if d == a {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
