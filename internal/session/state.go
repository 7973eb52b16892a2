// Package session tracks staged transactions per import session: applying
// them to the budget, undoing them within a time window, expiring abandoned
// sessions, and keeping the pruned import-history audit log.
//
// Every operation is a pure function over an explicit State snapshot plus
// an explicit now; callers own persistence and must apply results as atomic
// read-modify-write steps (single writer) when the state is shared.
package session

import (
	"github.com/budgeteer-dev/budgeteer/internal/config"
	"github.com/budgeteer-dev/budgeteer/internal/model"
)

// Settings bound the staging lifecycle.
type Settings struct {
	UndoWindowMinutes    int
	HistoryMaxEntries    int
	HistoryMaxAgeDays    int
	StagedAutoExpireDays int
}

// DefaultSettings returns the stock lifecycle bounds.
func DefaultSettings() Settings {
	return Settings{
		UndoWindowMinutes:    30,
		HistoryMaxEntries:    30,
		HistoryMaxAgeDays:    30,
		StagedAutoExpireDays: 30,
	}
}

// FromConfig maps the import config onto lifecycle settings.
func FromConfig(cfg config.ImportConfig) Settings {
	return Settings{
		UndoWindowMinutes:    cfg.UndoWindowMinutes,
		HistoryMaxEntries:    cfg.HistoryMaxEntries,
		HistoryMaxAgeDays:    cfg.HistoryMaxAgeDays,
		StagedAutoExpireDays: cfg.StagedAutoExpireDays,
	}
}

// State is one full snapshot of lifecycle-managed data. Operations return a
// new State and never mutate their input.
type State struct {
	Ledger         model.LedgerState                    `json:"ledger"`
	PendingSavings map[string][]model.SavingsQueueEntry `json:"pendingSavings"` // by account
	ReviewQueue    []model.SavingsQueueEntry            `json:"reviewQueue"`
	History        []model.ImportHistoryEntry           `json:"history"` // newest first
}

// NewState returns an empty snapshot.
func NewState() State {
	return State{
		Ledger:         model.NewLedgerState(),
		PendingSavings: make(map[string][]model.SavingsQueueEntry),
	}
}

func (s State) clone() State {
	next := State{
		Ledger:         s.Ledger.Clone(),
		PendingSavings: make(map[string][]model.SavingsQueueEntry, len(s.PendingSavings)),
		ReviewQueue:    append([]model.SavingsQueueEntry(nil), s.ReviewQueue...),
		History:        append([]model.ImportHistoryEntry(nil), s.History...),
	}
	for acct, entries := range s.PendingSavings {
		next.PendingSavings[acct] = append([]model.SavingsQueueEntry(nil), entries...)
	}
	return next
}

// findHistory returns the history entry for (account, session), or nil.
func findHistory(history []model.ImportHistoryEntry, accountID, sessionID string) *model.ImportHistoryEntry {
	for i := range history {
		if history[i].SessionID == sessionID && history[i].AccountID == accountID {
			return &history[i]
		}
	}
	return nil
}

func monthSet(months []string) map[string]struct{} {
	set := make(map[string]struct{}, len(months))
	for _, m := range months {
		set[m] = struct{}{}
	}
	return set
}
