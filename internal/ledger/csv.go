package ledger

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

const dateTimeFormat = time.RFC3339

// Transaction CSV layout (transactions/<account>.csv).
const txHeader = "id,session_id,date,description,amount,raw_amount,type,category,category_source,key,staged,budget_applied,auto_applied,original"

const (
	txNumFields   = 14
	txColID       = 0
	txColSession  = 1
	txColDate     = 2
	txColDesc     = 3
	txColAmount   = 4
	txColRaw      = 5
	txColType     = 6
	txColCategory = 7
	txColSource   = 8
	txColKey      = 9
	txColStaged   = 10
	txColApplied  = 11
	txColAuto     = 12
	txColOriginal = 13
)

// MarshalTransaction converts an AcceptedTransaction to a CSV row. The
// original raw row is kept as JSON so downstream heuristics survive a
// round-trip through the store.
func MarshalTransaction(tx model.AcceptedTransaction) ([]string, error) {
	row := make([]string, txNumFields)
	row[txColID] = tx.ID
	row[txColSession] = tx.ImportSessionID
	row[txColDate] = tx.Date
	row[txColDesc] = tx.Description
	row[txColAmount] = tx.Amount.String()
	row[txColRaw] = tx.RawAmount.String()
	row[txColType] = string(tx.Type)
	row[txColCategory] = tx.Category
	row[txColSource] = string(tx.CategorySource)
	row[txColKey] = tx.Key
	row[txColStaged] = strconv.FormatBool(tx.Staged)
	row[txColApplied] = strconv.FormatBool(tx.BudgetApplied)
	row[txColAuto] = strconv.FormatBool(tx.AutoApplied)

	if tx.Original.Fields != nil {
		data, err := json.Marshal(tx.Original)
		if err != nil {
			return nil, fmt.Errorf("marshaling original row: %w", err)
		}
		row[txColOriginal] = string(data)
	}
	return row, nil
}

// UnmarshalTransaction converts a CSV row to an AcceptedTransaction.
func UnmarshalTransaction(record []string) (model.AcceptedTransaction, error) {
	if len(record) != txNumFields {
		return model.AcceptedTransaction{}, fmt.Errorf("expected %d fields, got %d", txNumFields, len(record))
	}

	amount, err := decimal.NewFromString(record[txColAmount])
	if err != nil {
		return model.AcceptedTransaction{}, fmt.Errorf("parsing amount %q: %w", record[txColAmount], err)
	}
	rawAmount, err := decimal.NewFromString(record[txColRaw])
	if err != nil {
		return model.AcceptedTransaction{}, fmt.Errorf("parsing raw_amount %q: %w", record[txColRaw], err)
	}

	staged, err := strconv.ParseBool(record[txColStaged])
	if err != nil {
		return model.AcceptedTransaction{}, fmt.Errorf("parsing staged %q: %w", record[txColStaged], err)
	}
	applied, err := strconv.ParseBool(record[txColApplied])
	if err != nil {
		return model.AcceptedTransaction{}, fmt.Errorf("parsing budget_applied %q: %w", record[txColApplied], err)
	}
	auto, err := strconv.ParseBool(record[txColAuto])
	if err != nil {
		return model.AcceptedTransaction{}, fmt.Errorf("parsing auto_applied %q: %w", record[txColAuto], err)
	}

	var original model.RawRow
	if record[txColOriginal] != "" {
		if err := json.Unmarshal([]byte(record[txColOriginal]), &original); err != nil {
			return model.AcceptedTransaction{}, fmt.Errorf("parsing original row: %w", err)
		}
	}

	txType, _ := model.ParseTxType(record[txColType])

	return model.AcceptedTransaction{
		NormalizedTransaction: model.NormalizedTransaction{
			Date:        record[txColDate],
			Description: record[txColDesc],
			Amount:      amount,
			RawAmount:   rawAmount,
			Type:        txType,
			Category:    record[txColCategory],
			Original:    original,
		},
		ID:              record[txColID],
		Key:             record[txColKey],
		ImportSessionID: record[txColSession],
		CategorySource:  model.CategorySource(record[txColSource]),
		Staged:          staged,
		BudgetApplied:   applied,
		AutoApplied:     auto,
	}, nil
}

// ReadTransactions reads all transactions from one account file.
func ReadTransactions(r io.Reader) ([]model.AcceptedTransaction, error) {
	records, err := readAll(r, txNumFields)
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	var txns []model.AcceptedTransaction
	for i, rec := range records {
		tx, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, tx)
	}
	return txns, nil
}

// WriteTransactions writes one account's transactions (including header).
func WriteTransactions(w io.Writer, txns []model.AcceptedTransaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(txHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range txns {
		row, err := MarshalTransaction(tx)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// Account CSV layout (accounts/accounts.csv).
const acctHeader = "account_id,label,type"

const (
	acctNumFields = 3
	acctColID     = 0
	acctColLabel  = 1
	acctColType   = 2
)

// ReadAccounts reads account metadata rows.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	records, err := readAll(r, acctNumFields)
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	var accounts []model.Account
	for _, rec := range records {
		accounts = append(accounts, model.Account{
			ID:    rec[acctColID],
			Label: rec[acctColLabel],
			Type:  rec[acctColType],
		})
	}
	return accounts, nil
}

// WriteAccounts writes account metadata rows (including header).
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(acctHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range accounts {
		if err := cw.Write([]string{a.ID, a.Label, a.Type}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// readAll reads CSV records and drops the header row.
func readAll(r io.Reader, numFields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}
