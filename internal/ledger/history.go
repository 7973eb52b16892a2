package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

// Import-history CSV layout (history.csv).
const histHeader = "session_id,account_id,imported_at,new_count,dupes_existing,dupes_intra_file,savings_count,hash,undone_at,removed"

const (
	histNumFields     = 10
	histColSession    = 0
	histColAccount    = 1
	histColImportedAt = 2
	histColNew        = 3
	histColDupesEx    = 4
	histColDupesIntra = 5
	histColSavings    = 6
	histColHash       = 7
	histColUndoneAt   = 8
	histColRemoved    = 9
)

// ReadHistory reads the import audit log, newest first as written.
func ReadHistory(r io.Reader) ([]model.ImportHistoryEntry, error) {
	records, err := readAll(r, histNumFields)
	if err != nil {
		return nil, fmt.Errorf("reading history CSV: %w", err)
	}

	var history []model.ImportHistoryEntry
	for i, rec := range records {
		entry, err := unmarshalHistory(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		history = append(history, entry)
	}
	return history, nil
}

func unmarshalHistory(record []string) (model.ImportHistoryEntry, error) {
	importedAt, err := time.Parse(dateTimeFormat, record[histColImportedAt])
	if err != nil {
		return model.ImportHistoryEntry{}, fmt.Errorf("parsing imported_at %q: %w", record[histColImportedAt], err)
	}

	counts := make([]int, 4)
	for i, col := range []int{histColNew, histColDupesEx, histColDupesIntra, histColSavings} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return model.ImportHistoryEntry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts[i] = n
	}

	removed, err := strconv.Atoi(record[histColRemoved])
	if err != nil {
		return model.ImportHistoryEntry{}, fmt.Errorf("parsing removed %q: %w", record[histColRemoved], err)
	}

	var undoneAt *time.Time
	if record[histColUndoneAt] != "" {
		t, err := time.Parse(dateTimeFormat, record[histColUndoneAt])
		if err != nil {
			return model.ImportHistoryEntry{}, fmt.Errorf("parsing undone_at %q: %w", record[histColUndoneAt], err)
		}
		undoneAt = &t
	}

	return model.ImportHistoryEntry{
		SessionID:      record[histColSession],
		AccountID:      record[histColAccount],
		ImportedAt:     importedAt,
		NewCount:       counts[0],
		DupesExisting:  counts[1],
		DupesIntraFile: counts[2],
		SavingsCount:   counts[3],
		Hash:           record[histColHash],
		UndoneAt:       undoneAt,
		Removed:        removed,
	}, nil
}

// WriteHistory writes the import audit log (including header).
func WriteHistory(w io.Writer, history []model.ImportHistoryEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(histHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, h := range history {
		row := make([]string, histNumFields)
		row[histColSession] = h.SessionID
		row[histColAccount] = h.AccountID
		row[histColImportedAt] = h.ImportedAt.Format(dateTimeFormat)
		row[histColNew] = strconv.Itoa(h.NewCount)
		row[histColDupesEx] = strconv.Itoa(h.DupesExisting)
		row[histColDupesIntra] = strconv.Itoa(h.DupesIntraFile)
		row[histColSavings] = strconv.Itoa(h.SavingsCount)
		row[histColHash] = h.Hash
		if h.UndoneAt != nil {
			row[histColUndoneAt] = h.UndoneAt.Format(dateTimeFormat)
		}
		row[histColRemoved] = strconv.Itoa(h.Removed)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// Savings-queue CSV layout (savings.csv). Pending entries and review-queue
// entries share one file, distinguished by the stage column.
const savingsHeader = "stage,account_id,id,original_tx_id,session_id,date,month,name,amount,created_at"

const (
	savingsNumFields  = 10
	savColStage       = 0
	savColAccount     = 1
	savColID          = 2
	savColOriginalTx  = 3
	savColSession     = 4
	savColDate        = 5
	savColMonth       = 6
	savColName        = 7
	savColAmount      = 8
	savColCreatedAt   = 9
	savStagePending   = "pending"
	savStageReview    = "review"
)

// SavingsRow is one persisted savings-queue entry plus its placement.
type SavingsRow struct {
	Stage     string
	AccountID string
	Entry     model.SavingsQueueEntry
}

// ReadSavings reads the combined savings-queue file.
func ReadSavings(r io.Reader) ([]SavingsRow, error) {
	records, err := readAll(r, savingsNumFields)
	if err != nil {
		return nil, fmt.Errorf("reading savings CSV: %w", err)
	}

	var rows []SavingsRow
	for i, rec := range records {
		amount, err := decimal.NewFromString(rec[savColAmount])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[savColAmount], err)
		}
		createdAt, err := time.Parse(dateTimeFormat, rec[savColCreatedAt])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing created_at %q: %w", i+2, rec[savColCreatedAt], err)
		}
		rows = append(rows, SavingsRow{
			Stage:     rec[savColStage],
			AccountID: rec[savColAccount],
			Entry: model.SavingsQueueEntry{
				ID:              rec[savColID],
				OriginalTxID:    rec[savColOriginalTx],
				ImportSessionID: rec[savColSession],
				Date:            rec[savColDate],
				Month:           rec[savColMonth],
				Name:            rec[savColName],
				Amount:          amount,
				CreatedAt:       createdAt,
			},
		})
	}
	return rows, nil
}

// WriteSavings writes the combined savings-queue file (including header).
func WriteSavings(w io.Writer, rows []SavingsRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(savingsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		row := make([]string, savingsNumFields)
		row[savColStage] = r.Stage
		row[savColAccount] = r.AccountID
		row[savColID] = r.Entry.ID
		row[savColOriginalTx] = r.Entry.OriginalTxID
		row[savColSession] = r.Entry.ImportSessionID
		row[savColDate] = r.Entry.Date
		row[savColMonth] = r.Entry.Month
		row[savColName] = r.Entry.Name
		row[savColAmount] = r.Entry.Amount.String()
		row[savColCreatedAt] = r.Entry.CreatedAt.Format(dateTimeFormat)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
