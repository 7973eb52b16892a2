package model

import (
	"github.com/shopspring/decimal"
)

// TxType is the final classification of a transaction.
type TxType string

const (
	TxIncome  TxType = "income"
	TxExpense TxType = "expense"
	TxSavings TxType = "savings"
)

// ParseTxType returns the TxType for s, or false if s is not one.
func ParseTxType(s string) (TxType, bool) {
	switch TxType(s) {
	case TxIncome, TxExpense, TxSavings:
		return TxType(s), true
	}
	return "", false
}

// CategorySource records which inference phase labeled a transaction.
type CategorySource string

const (
	SourceProvided  CategorySource = "provided"
	SourceKeyword   CategorySource = "keyword"
	SourceRegex     CategorySource = "regex"
	SourceConsensus CategorySource = "consensus"
	SourceNone      CategorySource = "none"
)

// RawRow is one parsed CSV data row: header name -> cell value, plus the
// 1-based line number the row started on. Unrecognized headers are kept
// verbatim for downstream heuristics (balance extraction, account type).
type RawRow struct {
	Fields map[string]string `json:"fields"`
	Line   int               `json:"line"`
}

// Get returns the cell for the first header name that has a non-empty value.
func (r RawRow) Get(names ...string) string {
	for _, n := range names {
		if v, ok := r.Fields[n]; ok && v != "" {
			return v
		}
	}
	return ""
}

// NormalizedTransaction is the canonical transaction skeleton produced by
// the row normalizer. Amount is always the absolute value of RawAmount;
// Date is always a valid YYYY-MM-DD day.
type NormalizedTransaction struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	RawAmount   decimal.Decimal `json:"rawAmount"`
	Type        TxType          `json:"type,omitempty"`     // empty until classified; explicit savings survives
	Category    string          `json:"category,omitempty"` // empty = unset
	Original    RawRow          `json:"original"`
}

// Month returns the YYYY-MM prefix of the transaction date.
func (t NormalizedTransaction) Month() string {
	if len(t.Date) < 7 {
		return t.Date
	}
	return t.Date[:7]
}

// AcceptedTransaction is a classified transaction accepted into an import
// session. Staged and BudgetApplied are mutually exclusive at any instant;
// a transaction leaves both false only when it has been undone and removed.
type AcceptedTransaction struct {
	NormalizedTransaction

	ID              string         `json:"id"`
	Key             string         `json:"key"`
	ImportSessionID string         `json:"importSessionId"`
	CategorySource  CategorySource `json:"categorySource"`
	Staged          bool           `json:"staged"`
	BudgetApplied   bool           `json:"budgetApplied"`
	AutoApplied     bool           `json:"autoApplied,omitempty"`
}
