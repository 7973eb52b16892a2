package ingest

import (
	"regexp"
	"strings"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// BuildKey derives the stable composite dedup identity for a transaction:
// accountID | signed amount (2-decimal fixed) | normalized description,
// plus a |bal:<2dp> suffix when the original row carries a parseable
// running balance. Two transactions with the same key are the same
// real-world event regardless of which import produced them.
func BuildKey(accountID string, tx model.NormalizedTransaction) string {
	var b strings.Builder
	b.WriteString(accountID)
	b.WriteByte('|')
	b.WriteString(tx.RawAmount.StringFixed(2))
	b.WriteByte('|')
	b.WriteString(NormalizeDescription(tx.Description))

	if bal := tx.Original.Get("Balance", "balance"); bal != "" {
		if d, ok := ParseSignedAmount(bal); ok {
			b.WriteString("|bal:")
			b.WriteString(d.StringFixed(2))
		}
	}
	return b.String()
}

// NormalizeDescription lowercases, collapses whitespace, and strips known
// card/ACH/POS prefixes so cosmetic differences never split identities.
func NormalizeDescription(desc string) string {
	s := stripCardPrefixes(desc)
	s = strings.ToLower(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExistingKeySet builds the set of dedup keys for already-stored
// transactions. Stored keys are trusted when present; otherwise the key is
// recomputed from the transaction itself.
func ExistingKeySet(accountID string, existing []model.AcceptedTransaction) map[string]struct{} {
	keys := make(map[string]struct{}, len(existing))
	for _, tx := range existing {
		k := tx.Key
		if k == "" {
			k = BuildKey(accountID, tx.NormalizedTransaction)
		}
		keys[k] = struct{}{}
	}
	return keys
}
