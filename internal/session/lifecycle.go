package session

import (
	"time"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

// MarkApplied flips staged transactions of one session to budget-applied,
// scoped to the given months. Scoping is the conjunction of session AND
// month: other sessions in the same month and other months in the same
// session are untouched. An empty month set is a silent no-op.
func MarkApplied(st State, accountID, sessionID string, months []string) State {
	if len(months) == 0 {
		return st
	}
	acct, ok := st.Ledger.Accounts[accountID]
	if !ok {
		return st
	}
	set := monthSet(months)

	changed := false
	updated := make([]model.AcceptedTransaction, len(acct.Transactions))
	for i, tx := range acct.Transactions {
		if tx.Staged && !tx.BudgetApplied && tx.ImportSessionID == sessionID {
			if _, in := set[tx.Month()]; in {
				tx.Staged = false
				tx.BudgetApplied = true
				changed = true
			}
		}
		updated[i] = tx
	}
	if !changed {
		return st
	}

	next := st.clone()
	acct = next.Ledger.Accounts[accountID]
	acct.Transactions = updated
	next.Ledger.Accounts[accountID] = acct
	return next
}

// AddPendingSavings appends savings-queue entries awaiting goal linkage.
func AddPendingSavings(st State, accountID string, entries []model.SavingsQueueEntry) State {
	if len(entries) == 0 {
		return st
	}
	next := st.clone()
	next.PendingSavings[accountID] = append(next.PendingSavings[accountID], entries...)
	return next
}

// ProcessPendingSavings moves pending savings entries for one session and
// month set into the review queue, with the same session-AND-month scoping
// as MarkApplied.
func ProcessPendingSavings(st State, accountID, sessionID string, months []string) State {
	pending := st.PendingSavings[accountID]
	if len(pending) == 0 || len(months) == 0 {
		return st
	}
	set := monthSet(months)

	var toQueue, remaining []model.SavingsQueueEntry
	for _, e := range pending {
		_, in := set[e.Month]
		if e.ImportSessionID == sessionID && in {
			toQueue = append(toQueue, e)
		} else {
			remaining = append(remaining, e)
		}
	}
	if len(toQueue) == 0 {
		return st
	}

	next := st.clone()
	next.PendingSavings[accountID] = remaining
	next.ReviewQueue = append(next.ReviewQueue, toQueue...)
	return next
}

// ClearPendingSavingsMonths drops pending savings entries for the given
// months across all sessions of the account, without queuing anything.
func ClearPendingSavingsMonths(st State, accountID string, months []string) State {
	pending := st.PendingSavings[accountID]
	if len(pending) == 0 || len(months) == 0 {
		return st
	}
	set := monthSet(months)

	var remaining []model.SavingsQueueEntry
	for _, e := range pending {
		if _, in := set[e.Month]; !in {
			remaining = append(remaining, e)
		}
	}
	if len(remaining) == len(pending) {
		return st
	}

	next := st.clone()
	next.PendingSavings[accountID] = remaining
	return next
}

// Undo reverts a staged import session: it removes all still-staged
// transactions of the session, drops the session's pending savings entries,
// and stamps the history entry. Permitted only while the history entry has
// no UndoneAt and the undo window has not lapsed; otherwise a silent no-op.
// Already-applied transactions are never touched by undo.
func Undo(st State, accountID, sessionID string, now time.Time, settings Settings) State {
	acct, ok := st.Ledger.Accounts[accountID]
	if !ok {
		return st
	}
	hist := findHistory(st.History, accountID, sessionID)
	if hist == nil || hist.UndoneAt != nil {
		return st
	}
	window := time.Duration(settings.UndoWindowMinutes) * time.Minute
	if now.Sub(hist.ImportedAt) > window {
		return st
	}

	removed := 0
	var remaining []model.AcceptedTransaction
	for _, tx := range acct.Transactions {
		if tx.ImportSessionID == sessionID && tx.Staged {
			removed++
			continue
		}
		remaining = append(remaining, tx)
	}
	if removed == 0 {
		return st // nothing staged to undo (already applied?)
	}

	next := st.clone()
	acct = next.Ledger.Accounts[accountID]
	acct.Transactions = remaining
	next.Ledger.Accounts[accountID] = acct

	var pendingLeft []model.SavingsQueueEntry
	for _, e := range next.PendingSavings[accountID] {
		if e.ImportSessionID != sessionID {
			pendingLeft = append(pendingLeft, e)
		}
	}
	next.PendingSavings[accountID] = pendingLeft

	undoneAt := now
	for i := range next.History {
		h := &next.History[i]
		if h.SessionID == sessionID && h.AccountID == accountID && h.UndoneAt == nil {
			h.UndoneAt = &undoneAt
			h.Removed = removed
		}
	}
	return next
}

// ExpireStaged auto-applies staged transactions whose owning history entry
// is older than the staged auto-expire age: abandoned imports are treated
// as implicitly accepted rather than silently lost.
func ExpireStaged(st State, now time.Time, settings Settings) State {
	cutoff := now.Add(-time.Duration(settings.StagedAutoExpireDays) * 24 * time.Hour)

	changed := false
	next := st.clone()
	for acctID, acct := range next.Ledger.Accounts {
		acctChanged := false
		for i, tx := range acct.Transactions {
			if !tx.Staged || tx.BudgetApplied {
				continue
			}
			hist := findHistory(next.History, acctID, tx.ImportSessionID)
			if hist == nil || !hist.ImportedAt.Before(cutoff) {
				continue
			}
			tx.Staged = false
			tx.BudgetApplied = true
			tx.AutoApplied = true
			acct.Transactions[i] = tx
			acctChanged = true
		}
		if acctChanged {
			next.Ledger.Accounts[acctID] = acct
			changed = true
		}
	}
	if !changed {
		return st
	}
	return next
}

// RecordHistory inserts an audit entry at the front, replacing any entry
// with the same session id, and caps the log length.
func RecordHistory(st State, entry model.ImportHistoryEntry, settings Settings) State {
	maxEntries := settings.HistoryMaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultSettings().HistoryMaxEntries
	}

	next := st.clone()
	filtered := make([]model.ImportHistoryEntry, 0, len(next.History)+1)
	filtered = append(filtered, entry)
	for _, h := range next.History {
		if h.SessionID != entry.SessionID {
			filtered = append(filtered, h)
		}
	}
	if len(filtered) > maxEntries {
		filtered = filtered[:maxEntries]
	}
	next.History = filtered
	return next
}

// PruneHistory drops entries older than the max age and enforces the entry
// cap. Newest entries are already at the front.
func PruneHistory(st State, now time.Time, settings Settings) State {
	maxEntries := settings.HistoryMaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultSettings().HistoryMaxEntries
	}
	maxAgeDays := settings.HistoryMaxAgeDays
	if maxAgeDays <= 0 {
		maxAgeDays = DefaultSettings().HistoryMaxAgeDays
	}
	cutoff := now.Add(-time.Duration(maxAgeDays) * 24 * time.Hour)

	var pruned []model.ImportHistoryEntry
	for _, h := range st.History {
		if h.ImportedAt.Before(cutoff) {
			continue
		}
		pruned = append(pruned, h)
	}
	if len(pruned) > maxEntries {
		pruned = pruned[:maxEntries]
	}
	if len(pruned) == len(st.History) {
		return st
	}

	next := st.clone()
	next.History = pruned
	return next
}
