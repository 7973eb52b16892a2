package ingest

import (
	"sort"
	"strings"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

const vendorRootWords = 3

// ConsensusThresholds control the vendor-consensus pass.
type ConsensusThresholds struct {
	MinOccurrences int
	DominanceRatio float64
}

// DefaultConsensus returns the stock consensus thresholds.
func DefaultConsensus() ConsensusThresholds {
	return ConsensusThresholds{MinOccurrences: 3, DominanceRatio: 0.6}
}

// vendorStats accumulates labeled samples per vendor root. Category counts
// keep first-seen insertion order so the dominance tie-break ("first
// category to reach the maximum") is deterministic.
type vendorStats struct {
	total         int
	labeled       int
	categoryOrder []string
	categoryCount map[string]int
}

// CategoryContext is the per-ingestion-run accumulator for the consensus
// phase. It is built and consumed within one run; never persisted.
type CategoryContext struct {
	vendors map[string]*vendorStats
}

// NewCategoryContext creates an empty context for one ingestion run.
func NewCategoryContext() *CategoryContext {
	return &CategoryContext{vendors: make(map[string]*vendorStats)}
}

// VendorRoot derives the approximate merchant identity: the first few
// normalized words of the description after stripping card prefixes.
func VendorRoot(description string) string {
	base := NormalizeDescription(description)
	words := strings.Split(base, " ")
	if len(words) > vendorRootWords {
		words = words[:vendorRootWords]
	}
	return strings.Join(words, " ")
}

func (c *CategoryContext) record(vendorRoot, category string, labeled bool) {
	if vendorRoot == "" {
		return
	}
	v := c.vendors[vendorRoot]
	if v == nil {
		v = &vendorStats{categoryCount: make(map[string]int)}
		c.vendors[vendorRoot] = v
	}
	v.total++
	if labeled {
		v.labeled++
		if _, seen := v.categoryCount[category]; !seen {
			v.categoryOrder = append(v.categoryOrder, category)
		}
		v.categoryCount[category]++
	}
}

// InferResult is the outcome of immediate inference for one transaction.
type InferResult struct {
	Category   string
	Source     model.CategorySource
	VendorRoot string
}

// InferCategory runs immediate inference for one transaction and records
// its vendor-root sample in the context. Order, first match wins: explicit
// category, keyword table (longest keyword first), regex rules, none.
func InferCategory(tx model.NormalizedTransaction, ctx *CategoryContext) InferResult {
	root := VendorRoot(tx.Description)
	category, source := inferImmediate(tx)

	ctx.record(root, category, category != "")

	if category == "" {
		source = model.SourceNone
	}
	return InferResult{Category: category, Source: source, VendorRoot: root}
}

func inferImmediate(tx model.NormalizedTransaction) (string, model.CategorySource) {
	if provided := strings.TrimSpace(tx.Category); provided != "" &&
		!strings.EqualFold(provided, "uncategorized") {
		return provided, model.SourceProvided
	}

	desc := strings.TrimSpace(strings.ToLower(whitespaceRe.ReplaceAllString(tx.Description, " ")))

	for _, kw := range sortedKeywords {
		if strings.Contains(desc, kw) {
			return keywordCategories[kw], model.SourceKeyword
		}
	}

	for _, rule := range regexRules {
		if rule.pattern.MatchString(desc) {
			return rule.category, model.SourceRegex
		}
	}

	return "", model.SourceNone
}

// sortedKeywords holds keyword-table keys longest first, preventing short
// substrings from pre-empting longer, more specific matches.
var sortedKeywords = sortKeywords()

func sortKeywords() []string {
	kws := make([]string, 0, len(keywordCategories))
	for kw := range keywordCategories {
		kws = append(kws, kw)
	}
	sort.Slice(kws, func(i, j int) bool {
		if len(kws[i]) != len(kws[j]) {
			return len(kws[i]) > len(kws[j])
		}
		return kws[i] < kws[j]
	})
	return kws
}

// ApplyConsensus retroactively labels still-uncategorized transactions
// whose vendor root shows a dominant category among labeled siblings.
// vendorRoots runs parallel to accepted; both come from the ingestion loop.
func ApplyConsensus(accepted []model.AcceptedTransaction, vendorRoots []string, ctx *CategoryContext, thresholds ConsensusThresholds) {
	for i := range accepted {
		if accepted[i].Category != "" {
			continue
		}
		if i >= len(vendorRoots) || vendorRoots[i] == "" {
			continue
		}
		stats := ctx.vendors[vendorRoots[i]]
		if stats == nil || stats.labeled < thresholds.MinOccurrences {
			continue
		}

		topCat := ""
		topCount := 0
		for _, cat := range stats.categoryOrder {
			if stats.categoryCount[cat] > topCount {
				topCount = stats.categoryCount[cat]
				topCat = cat
			}
		}
		if topCat == "" {
			continue
		}
		if float64(topCount)/float64(stats.labeled) >= thresholds.DominanceRatio {
			accepted[i].Category = topCat
			accepted[i].CategorySource = model.SourceConsensus
		}
	}
}
