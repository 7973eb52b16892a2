package ingest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

func TestInferCategoryProvidedWins(t *testing.T) {
	ctx := NewCategoryContext()
	tx := txWith("NETFLIX.COM", "-15.99", "")
	tx.Category = "Date Night"

	got := InferCategory(tx, ctx)
	assert.Equal(t, "Date Night", got.Category)
	assert.Equal(t, model.SourceProvided, got.Source)
}

func TestInferCategoryUncategorizedPlaceholderIgnored(t *testing.T) {
	ctx := NewCategoryContext()
	tx := txWith("NETFLIX.COM", "-15.99", "")
	tx.Category = "Uncategorized"

	got := InferCategory(tx, ctx)
	assert.Equal(t, "Subscriptions", got.Category)
	assert.Equal(t, model.SourceKeyword, got.Source)
}

func TestInferCategoryKeyword(t *testing.T) {
	ctx := NewCategoryContext()
	tests := []struct {
		desc string
		want string
	}{
		{"NETFLIX.COM 866-579-7172", "Subscriptions"},
		{"KWIK TRIP #345", "Gas / Fuel"},
		{"AMZN Mktp US", "Shopping"},
		{"Axiom Properties LLC", "Mortgage / Rent"},
	}
	for _, tt := range tests {
		got := InferCategory(txWith(tt.desc, "-10.00", ""), ctx)
		assert.Equal(t, tt.want, got.Category, tt.desc)
		assert.Equal(t, model.SourceKeyword, got.Source, tt.desc)
	}
}

func TestInferCategoryLongestKeywordFirst(t *testing.T) {
	ctx := NewCategoryContext()
	// "prime video channels" must beat the shorter "prime video" entry.
	got := InferCategory(txWith("PRIME VIDEO CHANNELS 4.99", "-4.99", ""), ctx)
	assert.Equal(t, "Entertainment", got.Category)
}

func TestInferCategoryRegexFallback(t *testing.T) {
	ctx := NewCategoryContext()
	tests := []struct {
		desc string
		want string
	}{
		{"LOCAL GROCER #12", "Groceries"},
		{"SUPERMART EAST", "Groceries"},
		{"HIGHWAY GAS STATION", "Gas / Fuel"},
		{"MAIN ST PHARMACY", "Health"},
		{"ACME INSURANCE PREMIUM", "Insurance"},
	}
	for _, tt := range tests {
		got := InferCategory(txWith(tt.desc, "-10.00", ""), ctx)
		assert.Equal(t, tt.want, got.Category, tt.desc)
		assert.Equal(t, model.SourceRegex, got.Source, tt.desc)
	}
}

func TestInferCategoryNone(t *testing.T) {
	ctx := NewCategoryContext()
	got := InferCategory(txWith("JOES CAFE VISIT", "-10.00", ""), ctx)
	assert.Equal(t, "", got.Category)
	assert.Equal(t, model.SourceNone, got.Source)
	assert.Equal(t, "joes cafe visit", got.VendorRoot)
}

func TestVendorRoot(t *testing.T) {
	assert.Equal(t, "joes cafe downtown", VendorRoot("JOES Cafe Downtown Branch 42"))
	assert.Equal(t, "joes cafe", VendorRoot("Joes Cafe"))
	assert.Equal(t, "joes cafe downtown", VendorRoot("POS 99 Joes Cafe Downtown Branch"))
}

func TestApplyConsensusAssignsDominantCategory(t *testing.T) {
	ctx := NewCategoryContext()

	var accepted []model.AcceptedTransaction
	var roots []string
	add := func(desc, category string) {
		tx := txWith(desc, fmt.Sprintf("-%d.00", len(accepted)+1), "")
		tx.Category = category
		res := InferCategory(tx, ctx)
		tx.Category = res.Category
		accepted = append(accepted, model.AcceptedTransaction{
			NormalizedTransaction: tx,
			CategorySource:        res.Source,
		})
		roots = append(roots, res.VendorRoot)
	}

	add("Joes Cafe Visit 1", "Dining")
	add("Joes Cafe Visit 2", "Dining")
	add("Joes Cafe Visit 3", "Dining")
	add("Joes Cafe Visit 4", "")

	ApplyConsensus(accepted, roots, ctx, DefaultConsensus())

	assert.Equal(t, "Dining", accepted[3].Category)
	assert.Equal(t, model.SourceConsensus, accepted[3].CategorySource)
	// Immediate labels are untouched.
	assert.Equal(t, model.SourceProvided, accepted[0].CategorySource)
}

func TestApplyConsensusRespectsThresholds(t *testing.T) {
	build := func() ([]model.AcceptedTransaction, []string, *CategoryContext) {
		ctx := NewCategoryContext()
		var accepted []model.AcceptedTransaction
		var roots []string
		add := func(category string) {
			tx := txWith("Joes Cafe Visit", fmt.Sprintf("-%d.00", len(accepted)+1), "")
			tx.Category = category
			res := InferCategory(tx, ctx)
			tx.Category = res.Category
			accepted = append(accepted, model.AcceptedTransaction{NormalizedTransaction: tx, CategorySource: res.Source})
			roots = append(roots, res.VendorRoot)
		}
		add("Dining")
		add("Dining")
		add("Dining")
		add("Groceries")
		add("Groceries")
		add("")
		return accepted, roots, ctx
	}

	// 3 of 5 labeled say Dining: exactly at the 0.6 dominance bar.
	accepted, roots, ctx := build()
	ApplyConsensus(accepted, roots, ctx, ConsensusThresholds{MinOccurrences: 3, DominanceRatio: 0.6})
	assert.Equal(t, "Dining", accepted[5].Category)

	// The same split fails a stricter 0.7 bar.
	accepted, roots, ctx = build()
	ApplyConsensus(accepted, roots, ctx, ConsensusThresholds{MinOccurrences: 3, DominanceRatio: 0.7})
	assert.Equal(t, "", accepted[5].Category)

	// Too few labeled samples never reach consensus.
	ctx2 := NewCategoryContext()
	tx := txWith("Rare Vendor Stop", "-1.00", "")
	res := InferCategory(tx, ctx2)
	accepted2 := []model.AcceptedTransaction{{NormalizedTransaction: tx, CategorySource: res.Source}}
	ApplyConsensus(accepted2, []string{res.VendorRoot}, ctx2, DefaultConsensus())
	assert.Equal(t, "", accepted2[0].Category)
}

func TestApplyConsensusTieBreaksByFirstSeen(t *testing.T) {
	ctx := NewCategoryContext()
	var accepted []model.AcceptedTransaction
	var roots []string
	add := func(category string) {
		tx := txWith("Corner Stand Stop", fmt.Sprintf("-%d.00", len(accepted)+1), "")
		tx.Category = category
		res := InferCategory(tx, ctx)
		tx.Category = res.Category
		accepted = append(accepted, model.AcceptedTransaction{NormalizedTransaction: tx, CategorySource: res.Source})
		roots = append(roots, res.VendorRoot)
	}
	add("Dining")
	add("Snacks")
	add("Snacks")
	add("Dining")
	add("")

	// 2-2 tie between Dining and Snacks; Dining was seen first but 2/4 is
	// below the 0.6 bar, so nothing is assigned at defaults.
	ApplyConsensus(accepted, roots, ctx, DefaultConsensus())
	assert.Equal(t, "", accepted[4].Category)

	// At a 0.5 bar the first-seen category wins the tie deterministically.
	ApplyConsensus(accepted, roots, ctx, ConsensusThresholds{MinOccurrences: 3, DominanceRatio: 0.5})
	assert.Equal(t, "Dining", accepted[4].Category)

	require.Len(t, accepted, 5)
}
