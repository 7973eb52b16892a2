package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

var (
	slashDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	parenRe     = regexp.MustCompile(`^\(.*\)$`)
)

// NormalizeRow converts a raw row into a canonical transaction skeleton.
// Rows with an unparseable date, an empty description, or an unparseable
// amount are silently skipped (ok == false); these are not hard errors.
func NormalizeRow(raw model.RawRow) (model.NormalizedTransaction, bool) {
	date, ok := parseDate(strings.TrimSpace(raw.Get("date", "Date", "Posted Date")))
	if !ok {
		return model.NormalizedTransaction{}, false
	}

	description := strings.TrimSpace(raw.Get("description", "Description", "memo", "Memo"))
	if description == "" {
		return model.NormalizedTransaction{}, false
	}

	signed, ok := ParseSignedAmount(raw.Get("amount", "Amount", "amt", "Amt"))
	if !ok {
		return model.NormalizedTransaction{}, false
	}

	category := strings.TrimSpace(raw.Get("category", "Category", "CATEGORY"))

	txType, _ := model.ParseTxType(strings.ToLower(strings.TrimSpace(raw.Get("type", "Type"))))

	return model.NormalizedTransaction{
		Date:        date,
		Description: description,
		Amount:      signed.Abs(),
		RawAmount:   signed,
		Type:        txType,
		Category:    category,
		Original:    raw,
	}, true
}

// parseDate accepts ISO dates first, then falls back to M/D/YY(YY) with a
// 2-digit-year pivot at 70 (<70 -> 2000s, >=70 -> 1900s).
func parseDate(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	m := slashDateRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	mm, dd, yyyy := m[1], m[2], m[3]
	if len(yyyy) == 2 {
		if yyyy < "70" {
			yyyy = "20" + yyyy
		} else {
			yyyy = "19" + yyyy
		}
	}
	if len(mm) == 1 {
		mm = "0" + mm
	}
	if len(dd) == 1 {
		dd = "0" + dd
	}
	iso := fmt.Sprintf("%s-%s-%s", yyyy, mm, dd)
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// ParseSignedAmount parses a monetary string into a signed decimal. It
// handles parenthesized negatives ($1.04), currency symbols, leading and
// trailing signs, and comma thousands separators.
func ParseSignedAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, false
	}

	negative := false

	if parenRe.MatchString(s) {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.TrimSpace(strings.ReplaceAll(s, "$", ""))

	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		if s[0] == '-' {
			negative = true
		}
		s = strings.TrimSpace(s[1:])
	}

	if strings.HasSuffix(s, "+") || strings.HasSuffix(s, "-") {
		if s[len(s)-1] == '-' {
			negative = true
		}
		s = strings.TrimSpace(s[:len(s)-1])
	}

	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
