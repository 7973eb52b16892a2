package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

func TestBuildKeyShape(t *testing.T) {
	tx := txWith("Grocer Mart", "-20.50", "")
	assert.Equal(t, "checking|-20.50|grocer mart", BuildKey("checking", tx))
}

func TestBuildKeyIgnoresCosmeticDifferences(t *testing.T) {
	base := BuildKey("checking", txWith("Grocer Mart", "-20.50", ""))

	variants := []string{
		"GROCER MART",
		"grocer   mart",
		"  Grocer Mart  ",
		"DEBITCARD 1234: PURCHASE Grocer Mart",
		"POS 567 Grocer Mart",
		"WEB BRANCH: Grocer Mart",
		"ACH: Grocer Mart",
	}
	for _, desc := range variants {
		assert.Equal(t, base, BuildKey("checking", txWith(desc, "-20.50", "")), desc)
	}
}

func TestBuildKeyDistinguishes(t *testing.T) {
	base := BuildKey("checking", txWith("Grocer Mart", "-20.50", ""))

	assert.NotEqual(t, base, BuildKey("savings", txWith("Grocer Mart", "-20.50", "")))
	assert.NotEqual(t, base, BuildKey("checking", txWith("Grocer Mart", "20.50", "")))
	assert.NotEqual(t, base, BuildKey("checking", txWith("Grocer Mart #2", "-20.50", "")))
}

func TestBuildKeyBalanceSuffix(t *testing.T) {
	tx := txWith("Coffee", "-6.50", "")
	tx.Original = model.RawRow{Fields: map[string]string{"Balance": "$1,024.00"}}
	assert.Equal(t, "checking|-6.50|coffee|bal:1024.00", BuildKey("checking", tx))

	// Same row twice on the same day becomes distinguishable by balance.
	tx2 := txWith("Coffee", "-6.50", "")
	tx2.Original = model.RawRow{Fields: map[string]string{"Balance": "$1,017.50"}}
	assert.NotEqual(t, BuildKey("checking", tx), BuildKey("checking", tx2))

	// Unparseable balances contribute nothing.
	tx3 := txWith("Coffee", "-6.50", "")
	tx3.Original = model.RawRow{Fields: map[string]string{"Balance": "n/a"}}
	assert.Equal(t, "checking|-6.50|coffee", BuildKey("checking", tx3))
}

func TestNormalizeDescription(t *testing.T) {
	assert.Equal(t, "grocer mart", NormalizeDescription("DEBITCARD 4521: PURCHASE  Grocer   MART "))
	assert.Equal(t, "", NormalizeDescription("   "))
}

func TestExistingKeySet(t *testing.T) {
	stored := model.AcceptedTransaction{
		NormalizedTransaction: txWith("Grocer Mart", "-20.50", ""),
		Key:                   "checking|-20.50|grocer mart",
	}
	// A legacy row without a stored key gets one recomputed.
	legacy := model.AcceptedTransaction{
		NormalizedTransaction: txWith("Coffee", "-6.50", ""),
	}

	keys := ExistingKeySet("checking", []model.AcceptedTransaction{stored, legacy})
	assert.Contains(t, keys, "checking|-20.50|grocer mart")
	assert.Contains(t, keys, "checking|-6.50|coffee")
}
