package ingest

import (
	"strings"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

// savingsPhrases are positive savings markers in a description. Savings
// classification is sticky: once set it is never overridden by the sign rule.
var savingsPhrases = []string{"transfer", "tfr ", " save", "savings"}

// Classify assigns the final transaction type. Explicit or heuristic savings
// wins; otherwise sign is authoritative (RawAmount >= 0 means income).
func Classify(tx model.NormalizedTransaction) model.NormalizedTransaction {
	if tx.Type == model.TxSavings || isSavingsDescription(tx.Description) {
		tx.Type = model.TxSavings
		return tx
	}

	if tx.RawAmount.Sign() >= 0 {
		tx.Type = model.TxIncome
	} else {
		tx.Type = model.TxExpense
	}
	return tx
}

func isSavingsDescription(desc string) bool {
	lower := strings.ToLower(desc)
	for _, phrase := range savingsPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
