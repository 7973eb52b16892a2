package ingest

import (
	"github.com/shopspring/decimal"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

// ErrorKind classifies a non-fatal ingestion error.
type ErrorKind string

const (
	ErrorParse     ErrorKind = "parse"
	ErrorNormalize ErrorKind = "normalize"
	ErrorDuplicate ErrorKind = "duplicate"
)

// DuplicateReason distinguishes the two duplicate short-circuit paths.
type DuplicateReason string

const (
	DupExisting  DuplicateReason = "existing"
	DupIntraFile DuplicateReason = "intra-file"
)

// IngestionError is one recorded row failure. No error ever aborts the run;
// every row is independently skip-or-accept.
type IngestionError struct {
	Kind    ErrorKind         `json:"kind"`
	Message string            `json:"message"`
	Line    int               `json:"line,omitempty"`
	Reason  DuplicateReason   `json:"reason,omitempty"`
	Raw     map[string]string `json:"raw,omitempty"`
}

// DuplicateSample is a small per-reason sample of skipped duplicates kept
// for UI display.
type DuplicateSample struct {
	Date   string          `json:"date,omitempty"`
	Amount decimal.Decimal `json:"amount"`
	Desc   string          `json:"desc,omitempty"`
	Reason DuplicateReason `json:"reason"`
	Line   int             `json:"line,omitempty"`
}

// StageTimings breaks the per-row pipeline down by stage, in milliseconds.
type StageTimings struct {
	NormalizeMs float64 `json:"normalizeMs"`
	ClassifyMs  float64 `json:"classifyMs"`
	InferMs     float64 `json:"inferMs"`
	KeyMs       float64 `json:"keyMs"`
	DedupeMs    float64 `json:"dedupeMs"`
	ConsensusMs float64 `json:"consensusMs"`
}

// ShortCircuitStats counts rows skipped by the early dedup check before any
// classification or inference work was spent on them.
type ShortCircuitStats struct {
	Existing  int `json:"existing"`
	IntraFile int `json:"intraFile"`
	Total     int `json:"total"`
}

// IngestionStats aggregates one run. Duplicate counts here are never
// capped, unlike the recorded error list.
type IngestionStats struct {
	NewCount        int            `json:"newCount"`
	Dupes           int            `json:"dupes"`
	DupesExisting   int            `json:"dupesExisting"`
	DupesIntraFile  int            `json:"dupesIntraFile"`
	SavingsCount    int            `json:"savingsCount"`
	Hash            string         `json:"hash"`
	CategorySources map[string]int `json:"categorySources"`
	ImportSessionID string         `json:"importSessionId"`

	IngestMs           float64           `json:"ingestMs"`
	ProcessMs          float64           `json:"processMs"`
	StageTimings       StageTimings      `json:"stageTimings"`
	RowsProcessed      int               `json:"rowsProcessed"`
	RowsPerSec         float64           `json:"rowsPerSec"`
	DuplicatesRatio    float64           `json:"duplicatesRatio"`
	EarlyShortCircuits ShortCircuitStats `json:"earlyShortCircuits"`
}

// TxPreview is a trimmed accepted-transaction view for display.
type TxPreview struct {
	ID              string          `json:"id"`
	Date            string          `json:"date"`
	RawAmount       decimal.Decimal `json:"rawAmount"`
	Amount          decimal.Decimal `json:"amount"`
	Type            model.TxType    `json:"type"`
	Category        string          `json:"category,omitempty"`
	Description     string          `json:"description"`
	ImportSessionID string          `json:"importSessionId"`
}

// ImportPlan is the complete, serializable output of one ingestion run.
// It carries no functions; the patch is built separately by the caller.
type ImportPlan struct {
	Session          model.ImportSession         `json:"session"`
	Accepted         []model.AcceptedTransaction `json:"accepted"`
	AcceptedPreview  []TxPreview                 `json:"acceptedPreview"`
	SavingsQueue     []model.SavingsQueueEntry   `json:"savingsQueue"`
	Stats            IngestionStats              `json:"stats"`
	Errors           []IngestionError            `json:"errors"`
	DuplicatesSample []DuplicateSample           `json:"duplicatesSample"`
}
