package session

import (
	"sort"
	"time"
)

// Status is the derived runtime state of an import session. It is computed
// from current data, never stored.
type Status string

const (
	StatusActive         Status = "active"
	StatusExpired        Status = "expired"
	StatusApplied        Status = "applied"
	StatusPartialApplied Status = "partial-applied"
	StatusUndone         Status = "undone"
	StatusPartialUndone  Status = "partial-undone"
)

// Runtime is the live view of one import session.
type Runtime struct {
	Status       Status
	StagedNow    int
	AppliedCount int
	Removed      int
	NewCount     int
	SavingsCount int
	CanUndo      bool
	Expired      bool
	ImportedAt   time.Time
	ExpiresAt    time.Time
	Hash         string
}

// RuntimeStatus computes the derived status of a session. Returns false if
// the session has no history entry.
func RuntimeStatus(st State, accountID, sessionID string, now time.Time, settings Settings) (Runtime, bool) {
	hist := findHistory(st.History, accountID, sessionID)
	if hist == nil {
		return Runtime{}, false
	}

	stagedNow := 0
	if acct, ok := st.Ledger.Accounts[accountID]; ok {
		for _, tx := range acct.Transactions {
			if tx.ImportSessionID == sessionID && tx.Staged {
				stagedNow++
			}
		}
	}

	expiresAt := hist.ImportedAt.Add(time.Duration(settings.UndoWindowMinutes) * time.Minute)
	expired := now.After(expiresAt)
	appliedCount := hist.NewCount - stagedNow - hist.Removed

	r := Runtime{
		StagedNow:    stagedNow,
		AppliedCount: appliedCount,
		Removed:      hist.Removed,
		NewCount:     hist.NewCount,
		SavingsCount: hist.SavingsCount,
		CanUndo:      hist.UndoneAt == nil && !expired && stagedNow > 0,
		Expired:      expired,
		ImportedAt:   hist.ImportedAt,
		ExpiresAt:    expiresAt,
		Hash:         hist.Hash,
	}

	switch {
	case hist.UndoneAt != nil:
		if hist.Removed > 0 && hist.Removed < hist.NewCount {
			r.Status = StatusPartialUndone
		} else {
			r.Status = StatusUndone
		}
	case stagedNow > 0:
		if expired {
			r.Status = StatusExpired
		} else {
			r.Status = StatusActive
		}
	default:
		if appliedCount == hist.NewCount {
			r.Status = StatusApplied
		} else {
			r.Status = StatusPartialApplied
		}
	}
	return r, true
}

// SessionSummary pairs a session id with its staged count and runtime view.
type SessionSummary struct {
	SessionID string
	Count     int
	Runtime
}

// StagedSessionSummaries lists sessions that still have staged rows on an
// account, newest import first.
func StagedSessionSummaries(st State, accountID string, now time.Time, settings Settings) []SessionSummary {
	acct, ok := st.Ledger.Accounts[accountID]
	if !ok {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, tx := range acct.Transactions {
		if tx.Staged && tx.ImportSessionID != "" {
			if _, seen := counts[tx.ImportSessionID]; !seen {
				order = append(order, tx.ImportSessionID)
			}
			counts[tx.ImportSessionID]++
		}
	}

	summaries := make([]SessionSummary, 0, len(order))
	for _, sessionID := range order {
		s := SessionSummary{SessionID: sessionID, Count: counts[sessionID]}
		if r, ok := RuntimeStatus(st, accountID, sessionID, now, settings); ok {
			s.Runtime = r
		}
		summaries = append(summaries, s)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].ImportedAt.After(summaries[j].ImportedAt)
	})
	return summaries
}
