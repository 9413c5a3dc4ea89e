package output

import (
	"time"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/journal"
	"github.com/manav03panchal/babyreminder/internal/model"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// ResultResponse is the output of commands that only change state.
type ResultResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
	Field      string `json:"field,omitempty"`
}

// NewErrorResponse builds an ErrorResponse, keeping user error details.
func NewErrorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{Status: "error", Error: err.Error()}
	if ue, ok := errors.AsUserError(err); ok {
		resp.Suggestion = ue.Suggestion
		resp.Field = ue.Field
	}
	return resp
}

// RuleOutput represents a schedule rule in JSON output.
type RuleOutput struct {
	ID    string   `json:"id"`
	Days  []string `json:"days"`
	Label string   `json:"label"`
	Start string   `json:"start"`
	End   string   `json:"end"`
}

// NewRuleOutput creates a RuleOutput from a rule.
func NewRuleOutput(r model.ScheduleRule) *RuleOutput {
	return &RuleOutput{ID: r.ID, Days: r.Days, Label: r.DaysLabel(), Start: r.StartTime, End: r.EndTime}
}

// RulesResponse represents the rule list output in JSON.
type RulesResponse struct {
	Rules []*RuleOutput `json:"rules"`
	Count int           `json:"count"`
}

// NewRulesResponse creates a RulesResponse from rules.
func NewRulesResponse(rules []model.ScheduleRule) *RulesResponse {
	out := make([]*RuleOutput, len(rules))
	for i, r := range rules {
		out[i] = NewRuleOutput(r)
	}
	return &RulesResponse{Rules: out, Count: len(out)}
}

// HistoryEntryOutput represents one journal entry in JSON output.
type HistoryEntryOutput struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	Device    string `json:"device,omitempty"`
	Source    string `json:"source,omitempty"`
	Effects   string `json:"effects"`
	Error     string `json:"error,omitempty"`
}

// HistoryResponse represents the history output in JSON.
type HistoryResponse struct {
	Entries []*HistoryEntryOutput `json:"entries"`
	Failed  int                   `json:"failed"`
}

// NewHistoryResponse creates a HistoryResponse from journal entries.
func NewHistoryResponse(entries []journal.Entry) *HistoryResponse {
	resp := &HistoryResponse{Entries: make([]*HistoryEntryOutput, len(entries))}
	for i, e := range entries {
		resp.Entries[i] = &HistoryEntryOutput{
			ID:        e.ID,
			Timestamp: e.Timestamp.Local().Format(time.RFC3339),
			Kind:      e.Kind,
			Device:    e.Device,
			Source:    e.Source,
			Effects:   e.Effects,
			Error:     e.Error,
		}
		if e.Failed() {
			resp.Failed++
		}
	}
	return resp
}

// PrintResult prints a ResultResponse.
func (j *JSONFormatter) PrintResult(message string) error {
	return j.JSON(&ResultResponse{Status: "ok", Message: message})
}

// PrintError prints an ErrorResponse.
func (j *JSONFormatter) PrintError(err error) error {
	return j.JSON(NewErrorResponse(err))
}
