package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgeteer-dev/budgeteer/internal/model"
	"github.com/budgeteer-dev/budgeteer/internal/session"
)

func sampleTx(id, sessionID, date, desc string, raw string) model.AcceptedTransaction {
	rawAmount := decimal.RequireFromString(raw)
	return model.AcceptedTransaction{
		NormalizedTransaction: model.NormalizedTransaction{
			Date:        date,
			Description: desc,
			Amount:      rawAmount.Abs(),
			RawAmount:   rawAmount,
			Type:        model.TxExpense,
			Category:    "Groceries",
			Original: model.RawRow{
				Fields: map[string]string{"date": date, "description": desc, "amount": raw},
				Line:   2,
			},
		},
		ID:              id,
		Key:             "checking|" + rawAmount.StringFixed(2) + "|" + desc,
		ImportSessionID: sessionID,
		CategorySource:  model.SourceKeyword,
		Staged:          true,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Init())

	importedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	st := session.NewState()
	st.Ledger.Accounts["checking"] = model.Account{
		ID:    "checking",
		Label: "Main Checking",
		Type:  "checking",
		Transactions: []model.AcceptedTransaction{
			sampleTx("tx-1", "s1", "2026-02-01", "grocer mart", "-20.50"),
			sampleTx("tx-2", "s1", "2026-02-02", "coffee shop", "-6.25"),
		},
	}
	st.History = []model.ImportHistoryEntry{{
		SessionID:     "s1",
		AccountID:     "checking",
		ImportedAt:    importedAt,
		NewCount:      2,
		DupesExisting: 1,
		Hash:          "abc123",
	}}
	st.PendingSavings["checking"] = []model.SavingsQueueEntry{{
		ID:              "sv-1",
		OriginalTxID:    "tx-2",
		ImportSessionID: "s1",
		Date:            "2026-02-02",
		Month:           "2026-02",
		Name:            "tfr to savings",
		Amount:          decimal.RequireFromString("50"),
		CreatedAt:       importedAt,
	}}
	st.ReviewQueue = []model.SavingsQueueEntry{{
		ID:        "sv-0",
		Date:      "2026-01-15",
		Month:     "2026-01",
		Name:      "savings plan",
		Amount:    decimal.RequireFromString("25"),
		CreatedAt: importedAt.AddDate(0, -1, 0),
	}}

	require.NoError(t, store.Save(st))

	loaded, err := store.Load()
	require.NoError(t, err)

	acct := loaded.Ledger.Accounts["checking"]
	require.Len(t, acct.Transactions, 2)
	assert.Equal(t, "Main Checking", acct.Label)

	tx := acct.Transactions[0]
	assert.Equal(t, "tx-1", tx.ID)
	assert.Equal(t, "s1", tx.ImportSessionID)
	assert.True(t, tx.RawAmount.Equal(decimal.RequireFromString("-20.50")))
	assert.True(t, tx.Staged)
	assert.Equal(t, model.SourceKeyword, tx.CategorySource)
	assert.Equal(t, "grocer mart", tx.Original.Fields["description"])
	assert.Equal(t, 2, tx.Original.Line)

	require.Len(t, loaded.History, 1)
	assert.Equal(t, "s1", loaded.History[0].SessionID)
	assert.True(t, loaded.History[0].ImportedAt.Equal(importedAt))
	assert.Nil(t, loaded.History[0].UndoneAt)

	require.Len(t, loaded.PendingSavings["checking"], 1)
	assert.Equal(t, "sv-1", loaded.PendingSavings["checking"][0].ID)
	require.Len(t, loaded.ReviewQueue, 1)
	assert.Equal(t, "sv-0", loaded.ReviewQueue[0].ID)
}

func TestStoreLoadMissingFiles(t *testing.T) {
	store := NewStore(t.TempDir())

	st, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, st.Ledger.Accounts)
	assert.Empty(t, st.History)
	assert.Empty(t, st.ReviewQueue)
}

func TestStoreUpdatePersistsResult(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Init())

	_, err := store.Update(func(st session.State) session.State {
		next := st
		next.Ledger = st.Ledger.Clone()
		next.Ledger.Accounts["savings"] = model.Account{ID: "savings", Label: "savings", Type: "savings"}
		return next
	})
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Contains(t, loaded.Ledger.Accounts, "savings")
}

func TestStoreUndoneAtRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	undoneAt := time.Date(2026, 2, 1, 10, 15, 0, 0, time.UTC)

	st := session.NewState()
	st.History = []model.ImportHistoryEntry{{
		SessionID:  "s1",
		AccountID:  "checking",
		ImportedAt: undoneAt.Add(-15 * time.Minute),
		NewCount:   3,
		UndoneAt:   &undoneAt,
		Removed:    3,
	}}
	require.NoError(t, store.Save(st))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded.History, 1)
	require.NotNil(t, loaded.History[0].UndoneAt)
	assert.True(t, loaded.History[0].UndoneAt.Equal(undoneAt))
	assert.Equal(t, 3, loaded.History[0].Removed)
}

func TestStoreRemovesStaleTransactionFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Init())

	st := session.NewState()
	st.Ledger.Accounts["old"] = model.Account{ID: "old", Label: "old", Type: "checking"}
	require.NoError(t, store.Save(st))
	require.FileExists(t, filepath.Join(dir, "transactions", "old.csv"))

	require.NoError(t, store.Save(session.NewState()))
	_, err := os.Stat(filepath.Join(dir, "transactions", "old.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestAccountFileNameSanitizes(t *testing.T) {
	assert.Equal(t, "joint_checking.csv", accountFileName("joint/checking"))
	assert.Equal(t, "cc-visa.csv", accountFileName("cc-visa"))
}
