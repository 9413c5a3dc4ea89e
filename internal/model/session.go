package model

import (
	"fmt"
	"time"
)

// SessionState is the state of the current reminder session.
type SessionState string

// Session states.
const (
	SessionIdle                  SessionState = "idle"
	SessionAwaitingStartResponse SessionState = "awaiting_start_response"
	SessionAwaitingEndResponse   SessionState = "awaiting_end_response"
)

// DefaultMaxRepeats is the default cap on end-driving reminder firings.
const DefaultMaxRepeats = 10

// Session is the persisted record of one reminder session, from a drive
// start until the user answers or the reminders run out.
type Session struct {
	State       SessionState `json:"state"`
	Responded   bool         `json:"responded_to_start"`
	Denied      bool         `json:"user_denied_session"`
	RepeatCount int          `json:"repeat_count"`
	StartedAt   time.Time    `json:"started_at,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{State: SessionIdle}
}

// IsIdle returns true if no start or end response is pending.
func (s *Session) IsIdle() bool {
	return s.State == "" || s.State == SessionIdle
}

// IsTerminal reports whether the end-driving reminders have been exhausted.
func (s *Session) IsTerminal(maxRepeats int) bool {
	return s.State == SessionAwaitingEndResponse && s.RepeatCount >= maxRepeats
}

// String renders the state with the repeat count when awaiting an end response.
func (s *Session) String() string {
	if s.State == SessionAwaitingEndResponse {
		return fmt.Sprintf("%s(%d)", s.State, s.RepeatCount)
	}
	if s.State == "" {
		return string(SessionIdle)
	}
	return string(s.State)
}

// Label returns a short human readable description of the session state.
func (s *Session) Label(maxRepeats int) string {
	switch s.State {
	case SessionAwaitingStartResponse:
		return "Waiting for start answer"
	case SessionAwaitingEndResponse:
		if s.RepeatCount >= maxRepeats {
			return "Reminders exhausted"
		}
		return fmt.Sprintf("Reminding (%d/%d)", s.RepeatCount, maxRepeats)
	default:
		return "Idle"
	}
}
