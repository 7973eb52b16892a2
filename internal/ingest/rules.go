package ingest

import (
	"regexp"
	"strings"
)

// cardPrefixPatterns strip bank card/ACH/POS boilerplate from descriptions
// before key building and vendor-root derivation. Order matters.
var cardPrefixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^debitcard\s+\d{3,}:\s*purchase\s*`),
	regexp.MustCompile(`(?i)^pos\s+\d+:?`),
	regexp.MustCompile(`(?i)^web branch:`),
	regexp.MustCompile(`(?i)^ach:`),
}

// keywordCategories maps description substrings to categories. Longest
// keyword is matched first so specific phrases beat short substrings.
var keywordCategories = map[string]string{
	// entertainment / subscriptions
	"netflix":              "Subscriptions",
	"prime video":          "Entertainment",
	"prime video channels": "Entertainment",
	"hulu":                 "Subscriptions",
	"spotify":              "Subscriptions",
	"rifftrax":             "Entertainment",
	// fuel / transport
	"kwik trip": "Gas / Fuel",
	"shell":     "Gas / Fuel",
	"chevron":   "Gas / Fuel",
	"uber":      "Transport",
	"lyft":      "Transport",
	// shopping
	"amzn":    "Shopping",
	"amazon":  "Shopping",
	"walmart": "Shopping",
	"target":  "Shopping",
	// housing
	"rent":             "Mortgage / Rent",
	"axiom properties": "Mortgage / Rent",
	// groceries
	"kroger": "Groceries",
	"aldi":   "Groceries",
	"costco": "Groceries",
	// dining
	"starbucks": "Dining",
	"dunkin":    "Dining",
	"mcdonald":  "Dining",
}

// regexRule is an ordered fallback rule; first match wins.
type regexRule struct {
	pattern  *regexp.Regexp
	category string
}

var regexRules = []regexRule{
	{regexp.MustCompile(`(?i)grocer|supermart|super\s?market`), "Groceries"},
	{regexp.MustCompile(`(?i)fuel|gas\s+station`), "Gas / Fuel"},
	{regexp.MustCompile(`(?i)pharmacy|walgreens|cvs`), "Health"},
	{regexp.MustCompile(`(?i)insurance`), "Insurance"},
}

// internalTransferPatterns match automatic transfers between the user's own
// accounts. Matching savings transactions never surface for goal review.
var internalTransferPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^tfr\s+(to|fr)\b`),
	regexp.MustCompile(`(?i)^(online|web)\s+(banking\s+)?transfer`),
	regexp.MustCompile(`(?i)\btransfer\s+(to|from)\s+(sav|shares?|chk|checking)\b`),
}

// IsInternalTransfer reports whether a description looks like a transfer
// between the user's own accounts.
func IsInternalTransfer(desc string) bool {
	for _, re := range internalTransferPatterns {
		if re.MatchString(desc) {
			return true
		}
	}
	return false
}

func stripCardPrefixes(desc string) string {
	s := desc
	for _, re := range cardPrefixPatterns {
		s = re.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}
