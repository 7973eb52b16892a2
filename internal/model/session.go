package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImportSession identifies one ingestion run.
type ImportSession struct {
	SessionID  string    `json:"sessionId"`
	AccountID  string    `json:"accountId"`
	ImportedAt time.Time `json:"importedAt"`
}

// ImportHistoryEntry is the durable audit record for one import session.
// It is created once and mutated only to set UndoneAt/Removed.
type ImportHistoryEntry struct {
	SessionID      string     `json:"sessionId"`
	AccountID      string     `json:"accountId"`
	ImportedAt     time.Time  `json:"importedAt"`
	NewCount       int        `json:"newCount"`
	DupesExisting  int        `json:"dupesExisting"`
	DupesIntraFile int        `json:"dupesIntraFile"`
	SavingsCount   int        `json:"savingsCount"`
	Hash           string     `json:"hash"`
	UndoneAt       *time.Time `json:"undoneAt,omitempty"`
	Removed        int        `json:"removed,omitempty"`
}

// SavingsQueueEntry is a savings-type transaction awaiting linkage to a
// savings goal, keyed by (ImportSessionID, Month) for scoped clearing.
type SavingsQueueEntry struct {
	ID              string          `json:"id"`
	OriginalTxID    string          `json:"originalTxId"`
	ImportSessionID string          `json:"importSessionId"`
	Date            string          `json:"date"`
	Month           string          `json:"month"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	CreatedAt       time.Time       `json:"createdAt"`
}
