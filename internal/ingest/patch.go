package ingest

import (
	"sort"
	"strings"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

// BuildPatch returns a pure transition that merges existing and newly
// accepted transactions into per-account ledger state, bootstrapping
// account metadata when the account is new. Existing account fields are
// preserved and never overwritten by bootstrap defaults.
func BuildPatch(accountID string, existing, accepted []model.AcceptedTransaction) model.LedgerPatch {
	merged := make([]model.AcceptedTransaction, 0, len(existing)+len(accepted))
	merged = append(merged, existing...)
	merged = append(merged, accepted...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})

	inferredType := inferAccountType(accepted)

	return func(state model.LedgerState) model.LedgerState {
		next := state.Clone()
		acct, ok := next.Accounts[accountID]
		if !ok {
			acct = model.Account{
				ID:    accountID,
				Label: accountID, // default label; user can edit later
				Type:  inferredType,
			}
		}
		acct.Transactions = merged
		next.Accounts[accountID] = acct
		return next
	}
}

// inferAccountType reads an AccountType field off the first accepted
// transaction's original row. Crude, but only used to seed brand-new
// accounts; defaults to checking.
func inferAccountType(accepted []model.AcceptedTransaction) string {
	for _, tx := range accepted {
		if tx.Original.Fields == nil {
			continue
		}
		t := strings.ToLower(strings.TrimSpace(tx.Original.Get("AccountType", "accountType", "account_type")))
		if t != "" {
			return t
		}
		break
	}
	return "checking"
}
