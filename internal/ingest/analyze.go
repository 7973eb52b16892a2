package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/budgeteer-dev/budgeteer/internal/id"
	"github.com/budgeteer-dev/budgeteer/internal/model"
)

const (
	// maxRecordedDuplicates bounds the recorded duplicate error list per
	// reason; duplicate counts in stats are never capped.
	maxRecordedDuplicates = 500
	// maxDuplicateSamples bounds the UI sample list per reason.
	maxDuplicateSamples = 10
)

// AnalyzeParams are the inputs of one ingestion run. Clock and IDs exist so
// tests can reproduce identical plans; both default to real sources.
type AnalyzeParams struct {
	FileText string
	Rows     []model.RawRow // pre-parsed alternative to FileText

	AccountID string
	Existing  []model.AcceptedTransaction

	SessionID  string
	ImportedAt time.Time
	Clock      func() time.Time
	IDs        id.Source

	Consensus  ConsensusThresholds
	Stream     StreamThresholds
	OnProgress func(rows int, finished bool)

	Logger *zerolog.Logger
}

// Analyze runs the full ingestion pipeline over the input and assembles an
// ImportPlan. It is pure and deterministic given identical inputs and an
// injected clock and ID source; no row failure ever aborts the run.
func Analyze(params AnalyzeParams) (ImportPlan, error) {
	if params.AccountID == "" {
		return ImportPlan{}, errors.New("account id required")
	}

	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	ids := params.IDs
	if ids == nil {
		ids = id.Random()
	}
	sessionID := params.SessionID
	if sessionID == "" {
		sessionID = id.NewSessionID()
	}
	importedAt := params.ImportedAt
	if importedAt.IsZero() {
		importedAt = clock()
	}
	thresholds := params.Consensus
	if thresholds.MinOccurrences == 0 && thresholds.DominanceRatio == 0 {
		thresholds = DefaultConsensus()
	}
	log := zerolog.Nop()
	if params.Logger != nil {
		log = *params.Logger
	}

	plan := ImportPlan{
		Session: model.ImportSession{
			SessionID:  sessionID,
			AccountID:  params.AccountID,
			ImportedAt: importedAt,
		},
	}

	// Parse phase.
	parseStart := clock()
	rows := params.Rows
	if rows == nil {
		var parseErrs []ParseError
		if ShouldStream(params.FileText, params.Stream) {
			res := StreamParse(params.FileText, StreamOpts{OnProgress: params.OnProgress, CollectRows: true})
			rows, parseErrs = res.Rows, res.Errors
		} else {
			rows, parseErrs = Parse(params.FileText)
		}
		for _, pe := range parseErrs {
			plan.Errors = append(plan.Errors, IngestionError{
				Kind:    ErrorParse,
				Line:    pe.Line,
				Message: pe.Message,
			})
		}
	}
	ingestMs := msBetween(parseStart, clock())

	// Process phase.
	processStart := clock()
	existingKeys := ExistingKeySet(params.AccountID, params.Existing)
	seenKeys := make(map[string]struct{}, len(rows))
	ctx := NewCategoryContext()

	var (
		timings     StageTimings
		vendorRoots []string
		stats       = IngestionStats{ImportSessionID: sessionID}
		dupErrors   = map[DuplicateReason]int{}
		dupSamples  = map[DuplicateReason]int{}
	)

	for _, raw := range rows {
		t0 := clock()
		tx, ok := NormalizeRow(raw)
		timings.NormalizeMs += msBetween(t0, clock())
		if !ok {
			plan.Errors = append(plan.Errors, IngestionError{
				Kind:    ErrorNormalize,
				Line:    raw.Line,
				Message: "row failed date/description/amount validation",
				Raw:     raw.Fields,
			})
			continue
		}

		// Early short-circuit: skip classification and inference work for
		// rows whose key is already known.
		t0 = clock()
		earlyKey := BuildKey(params.AccountID, tx)
		timings.KeyMs += msBetween(t0, clock())

		t0 = clock()
		_, isExisting := existingKeys[earlyKey]
		_, isIntraFile := seenKeys[earlyKey]
		timings.DedupeMs += msBetween(t0, clock())

		if isExisting || isIntraFile {
			reason := DupExisting
			if !isExisting {
				reason = DupIntraFile
				stats.DupesIntraFile++
				stats.EarlyShortCircuits.IntraFile++
			} else {
				stats.DupesExisting++
				stats.EarlyShortCircuits.Existing++
			}
			stats.EarlyShortCircuits.Total++

			if dupErrors[reason] < maxRecordedDuplicates {
				dupErrors[reason]++
				plan.Errors = append(plan.Errors, IngestionError{
					Kind:    ErrorDuplicate,
					Line:    raw.Line,
					Message: "duplicate transaction skipped",
					Reason:  reason,
					Raw:     raw.Fields,
				})
			}
			if dupSamples[reason] < maxDuplicateSamples {
				dupSamples[reason]++
				plan.DuplicatesSample = append(plan.DuplicatesSample, DuplicateSample{
					Date:   tx.Date,
					Amount: tx.Amount,
					Desc:   tx.Description,
					Reason: reason,
					Line:   raw.Line,
				})
			}
			continue
		}
		seenKeys[earlyKey] = struct{}{}

		t0 = clock()
		tx = Classify(tx)
		timings.ClassifyMs += msBetween(t0, clock())

		t0 = clock()
		inferred := InferCategory(tx, ctx)
		timings.InferMs += msBetween(t0, clock())
		tx.Category = inferred.Category

		// Rebuilt after classification/inference; byte-identical to the
		// early key by construction since key inputs are untouched.
		t0 = clock()
		finalKey := BuildKey(params.AccountID, tx)
		timings.KeyMs += msBetween(t0, clock())

		plan.Accepted = append(plan.Accepted, model.AcceptedTransaction{
			NormalizedTransaction: tx,
			ID:                    ids(),
			Key:                   finalKey,
			ImportSessionID:       sessionID,
			CategorySource:        inferred.Source,
			Staged:                true,
			BudgetApplied:         false,
		})
		vendorRoots = append(vendorRoots, inferred.VendorRoot)
	}

	t0 := clock()
	ApplyConsensus(plan.Accepted, vendorRoots, ctx, thresholds)
	timings.ConsensusMs += msBetween(t0, clock())

	plan.SavingsQueue = buildSavingsQueue(plan.Accepted, ids, importedAt)
	plan.AcceptedPreview = buildPreview(plan.Accepted)

	// Aggregate stats.
	processMs := msBetween(processStart, clock())
	stats.NewCount = len(plan.Accepted)
	stats.Dupes = stats.DupesExisting + stats.DupesIntraFile
	stats.Hash = hashText(params.FileText)
	stats.CategorySources = categorySourceCounts(plan.Accepted)
	stats.IngestMs = ingestMs
	stats.ProcessMs = processMs
	stats.StageTimings = timings
	stats.RowsProcessed = len(rows)
	if processMs > 0 {
		stats.RowsPerSec = float64(len(rows)) / (processMs / 1000)
	}
	if len(rows) > 0 {
		stats.DuplicatesRatio = float64(stats.Dupes) / float64(len(rows))
	}
	for _, tx := range plan.Accepted {
		if tx.Type == model.TxSavings {
			stats.SavingsCount++
		}
	}
	plan.Stats = stats

	log.Debug().
		Str("session", sessionID).
		Int("rows", stats.RowsProcessed).
		Int("accepted", stats.NewCount).
		Int("dupes", stats.Dupes).
		Float64("processMs", processMs).
		Msg("ingestion analyzed")

	return plan, nil
}

// HistoryEntry derives the durable audit record for this plan's session.
func (p ImportPlan) HistoryEntry() model.ImportHistoryEntry {
	return model.ImportHistoryEntry{
		SessionID:      p.Session.SessionID,
		AccountID:      p.Session.AccountID,
		ImportedAt:     p.Session.ImportedAt,
		NewCount:       p.Stats.NewCount,
		DupesExisting:  p.Stats.DupesExisting,
		DupesIntraFile: p.Stats.DupesIntraFile,
		SavingsCount:   p.Stats.SavingsCount,
		Hash:           p.Stats.Hash,
	}
}

// RunResult is what RunIngestion hands the store layer: the serializable
// plan plus the pure merge patch.
type RunResult struct {
	Plan  ImportPlan
	Patch model.LedgerPatch
}

// RunIngestion analyzes the input and builds the ledger patch. The optional
// manifest callback registers the file hash for cross-upload deduplication;
// its failure is non-critical and ignored.
func RunIngestion(params AnalyzeParams, registerManifest func(hash, accountID string)) (RunResult, error) {
	plan, err := Analyze(params)
	if err != nil {
		return RunResult{}, err
	}
	if registerManifest != nil {
		registerManifest(plan.Stats.Hash, params.AccountID)
	}
	return RunResult{
		Plan:  plan,
		Patch: BuildPatch(params.AccountID, params.Existing, plan.Accepted),
	}, nil
}

func buildSavingsQueue(accepted []model.AcceptedTransaction, ids id.Source, importedAt time.Time) []model.SavingsQueueEntry {
	var queue []model.SavingsQueueEntry
	for _, tx := range accepted {
		if tx.Type != model.TxSavings || IsInternalTransfer(tx.Description) {
			continue
		}
		queue = append(queue, model.SavingsQueueEntry{
			ID:              ids(),
			OriginalTxID:    tx.ID,
			ImportSessionID: tx.ImportSessionID,
			Date:            tx.Date,
			Month:           tx.Month(),
			Name:            tx.Description,
			Amount:          tx.Amount,
			CreatedAt:       importedAt,
		})
	}
	return queue
}

func buildPreview(accepted []model.AcceptedTransaction) []TxPreview {
	previews := make([]TxPreview, 0, len(accepted))
	for _, tx := range accepted {
		previews = append(previews, TxPreview{
			ID:              tx.ID,
			Date:            tx.Date,
			RawAmount:       tx.RawAmount,
			Amount:          tx.Amount,
			Type:            tx.Type,
			Category:        tx.Category,
			Description:     tx.Description,
			ImportSessionID: tx.ImportSessionID,
		})
	}
	return previews
}

func categorySourceCounts(accepted []model.AcceptedTransaction) map[string]int {
	counts := map[string]int{
		string(model.SourceProvided):  0,
		string(model.SourceKeyword):   0,
		string(model.SourceRegex):     0,
		string(model.SourceConsensus): 0,
		string(model.SourceNone):      0,
	}
	for _, tx := range accepted {
		counts[string(tx.CategorySource)]++
	}
	return counts
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func msBetween(from, to time.Time) float64 {
	return float64(to.Sub(from)) / float64(time.Millisecond)
}
