package domain

import (
	"time"

	"github.com/google/uuid"
)

// Signal is a relayed trading instruction and the per-account results of
// processing it. Signals are display records: ordering and idempotency are
// not guaranteed.
type Signal struct {
	ID         uuid.UUID       `json:"id"`
	Source     string          `json:"source"`
	Action     string          `json:"action"`
	Instrument string          `json:"instrument"`
	BotID      *uuid.UUID      `json:"bot_id,omitempty"`
	Message    string          `json:"message,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Outcomes   []SignalOutcome `json:"outcomes"`
}

// SignalOutcome records what happened when a signal reached one account
type SignalOutcome struct {
	AccountID   string    `json:"account_id"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Signal sources
const (
	SourceTradingView = "tradingview"
	SourceCoinstrat   = "coinstrat"
)

// Signal actions
const (
	ActionEnterLong  = "enter_long"
	ActionExitLong   = "exit_long"
	ActionEnterShort = "enter_short"
	ActionExitShort  = "exit_short"
)

// Outcome status values
const (
	OutcomeProcessed = "processed"
	OutcomeFailed    = "failed"
)

// ValidSource reports whether s is a known signal source
func ValidSource(s string) bool {
	return s == SourceTradingView || s == SourceCoinstrat
}

// ValidAction reports whether a is a known signal action
func ValidAction(a string) bool {
	switch a {
	case ActionEnterLong, ActionExitLong, ActionEnterShort, ActionExitShort:
		return true
	}
	return false
}

// Counts returns the number of processed and failed outcomes
func (s *Signal) Counts() (processed, failed int) {
	for _, o := range s.Outcomes {
		switch o.Status {
		case OutcomeProcessed:
			processed++
		case OutcomeFailed:
			failed++
		}
	}
	return processed, failed
}
