package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

func rawRow(fields map[string]string) model.RawRow {
	return model.RawRow{Fields: fields, Line: 2}
}

func TestNormalizeRowBasic(t *testing.T) {
	tx, ok := NormalizeRow(rawRow(map[string]string{
		"date":        "2026-02-01",
		"description": " Paycheck ",
		"amount":      "100.00",
	}))

	require.True(t, ok)
	assert.Equal(t, "2026-02-01", tx.Date)
	assert.Equal(t, "Paycheck", tx.Description)
	assert.Equal(t, "100", tx.RawAmount.String())
	assert.Equal(t, "2026-02", tx.Month())
}

func TestNormalizeRowHeaderAliases(t *testing.T) {
	tx, ok := NormalizeRow(rawRow(map[string]string{
		"Posted Date": "02/03/2026",
		"Memo":        "Coffee",
		"Amt":         "-6.50",
		"CATEGORY":    "Dining",
	}))

	require.True(t, ok)
	assert.Equal(t, "2026-02-03", tx.Date)
	assert.Equal(t, "Coffee", tx.Description)
	assert.Equal(t, "Dining", tx.Category)
	assert.True(t, tx.RawAmount.IsNegative())
}

func TestNormalizeRowRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"bad date", map[string]string{"date": "soon", "description": "x", "amount": "1"}},
		{"empty description", map[string]string{"date": "2026-02-01", "description": "  ", "amount": "1"}},
		{"bad amount", map[string]string{"date": "2026-02-01", "description": "x", "amount": "1.2.3"}},
		{"missing amount", map[string]string{"date": "2026-02-01", "description": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := NormalizeRow(rawRow(tt.fields))
			assert.False(t, ok)
		})
	}
}

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-02-01", "2026-02-01"},
		{"2026-02-01T10:30:00Z", "2026-02-01"},
		{"2/3/2026", "2026-02-03"},
		{"02/03/2026", "2026-02-03"},
		{"2/3/26", "2026-02-03"},  // 2-digit year below the pivot
		{"2/3/95", "1995-02-03"},  // 2-digit year at or above the pivot
		{"12/31/69", "2069-12-31"},
		{"12/31/70", "1970-12-31"},
	}
	for _, tt := range tests {
		got, ok := parseDate(tt.in)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "2026/02/01", "13/40/2026", "February 1"} {
		_, ok := parseDate(bad)
		assert.False(t, ok, bad)
	}
}

func TestParseSignedAmountForms(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"6.50", "6.5"},
		{"-6.50", "-6.5"},
		{"+6.50", "6.5"},
		{"6.50-", "-6.5"},
		{"($6.50)", "-6.5"},
		{"(6.50)", "-6.5"},
		{"$1,234.56", "1234.56"},
		{"-$1,234.56", "-1234.56"},
		{"$ 25", "25"},
	}
	for _, tt := range tests {
		got, ok := ParseSignedAmount(tt.in)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got.String(), tt.in)
	}

	for _, bad := range []string{"", "  ", "$", "()", "abc"} {
		_, ok := ParseSignedAmount(bad)
		assert.False(t, ok, bad)
	}
}
