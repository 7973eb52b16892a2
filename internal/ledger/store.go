// Package ledger persists the staged ledger as plain CSV files so the data
// stays inspectable and diffable under version control.
//
// Layout under the ledger root:
//
//	accounts.csv                account metadata
//	transactions/<account>.csv  one file per account
//	history.csv                 import audit log, newest first
//	savings.csv                 pending and review savings-queue entries
package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/budgeteer-dev/budgeteer/internal/model"
	"github.com/budgeteer-dev/budgeteer/internal/session"
)

const (
	accountsFile    = "accounts.csv"
	historyFile     = "history.csv"
	savingsFile     = "savings.csv"
	transactionsDir = "transactions"
)

// Store reads and writes the full snapshot under a root directory. It is not
// safe for concurrent writers; callers serialize Update calls.
type Store struct {
	root string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Init creates the directory skeleton and empty data files.
func (s *Store) Init() error {
	for _, dir := range []string{s.root, filepath.Join(s.root, transactionsDir), filepath.Join(s.root, "import")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return s.Save(session.NewState())
}

// Load reads the full snapshot. Missing files yield an empty snapshot so a
// fresh directory works without prior Init.
func (s *Store) Load() (session.State, error) {
	st := session.NewState()

	accounts, err := s.loadAccounts()
	if err != nil {
		return session.State{}, err
	}
	for _, a := range accounts {
		txns, err := s.loadTransactions(a.ID)
		if err != nil {
			return session.State{}, err
		}
		a.Transactions = txns
		st.Ledger.Accounts[a.ID] = a
	}

	history, err := s.loadHistory()
	if err != nil {
		return session.State{}, err
	}
	st.History = history

	if err := s.loadSavings(&st); err != nil {
		return session.State{}, err
	}
	return st, nil
}

// Save writes the full snapshot, replacing existing files. Transaction files
// for accounts no longer present are removed.
func (s *Store) Save(st session.State) error {
	if err := os.MkdirAll(filepath.Join(s.root, transactionsDir), 0o755); err != nil {
		return fmt.Errorf("creating transactions dir: %w", err)
	}

	accounts := make([]model.Account, 0, len(st.Ledger.Accounts))
	for _, a := range st.Ledger.Accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })

	if err := s.saveAccounts(accounts); err != nil {
		return err
	}

	keep := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		keep[accountFileName(a.ID)] = struct{}{}
		if err := s.saveTransactions(a.ID, a.Transactions); err != nil {
			return err
		}
	}
	if err := s.removeStaleTransactionFiles(keep); err != nil {
		return err
	}

	if err := s.saveHistory(st.History); err != nil {
		return err
	}
	return s.saveSavings(st)
}

// Update applies fn to the current snapshot and persists the result. The
// returned state is what was written.
func (s *Store) Update(fn func(session.State) session.State) (session.State, error) {
	st, err := s.Load()
	if err != nil {
		return session.State{}, err
	}
	next := fn(st)
	if err := s.Save(next); err != nil {
		return session.State{}, err
	}
	return next, nil
}

func (s *Store) loadAccounts() ([]model.Account, error) {
	f, err := os.Open(filepath.Join(s.root, accountsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening accounts file: %w", err)
	}
	defer f.Close()
	return ReadAccounts(f)
}

func (s *Store) saveAccounts(accounts []model.Account) error {
	f, err := os.Create(filepath.Join(s.root, accountsFile))
	if err != nil {
		return fmt.Errorf("creating accounts file: %w", err)
	}
	defer f.Close()
	if err := WriteAccounts(f, accounts); err != nil {
		return fmt.Errorf("writing accounts: %w", err)
	}
	return f.Close()
}

func (s *Store) loadTransactions(accountID string) ([]model.AcceptedTransaction, error) {
	path := filepath.Join(s.root, transactionsDir, accountFileName(accountID))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening transactions for %s: %w", accountID, err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", accountID, err)
	}
	return txns, nil
}

func (s *Store) saveTransactions(accountID string, txns []model.AcceptedTransaction) error {
	path := filepath.Join(s.root, transactionsDir, accountFileName(accountID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating transactions file for %s: %w", accountID, err)
	}
	defer f.Close()
	if err := WriteTransactions(f, txns); err != nil {
		return fmt.Errorf("writing transactions for %s: %w", accountID, err)
	}
	return f.Close()
}

func (s *Store) removeStaleTransactionFiles(keep map[string]struct{}) error {
	dir := filepath.Join(s.root, transactionsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading transactions dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := keep[e.Name()]; ok {
			continue
		}
		if !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("removing stale file %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (s *Store) loadHistory() ([]model.ImportHistoryEntry, error) {
	f, err := os.Open(filepath.Join(s.root, historyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()
	return ReadHistory(f)
}

func (s *Store) saveHistory(history []model.ImportHistoryEntry) error {
	f, err := os.Create(filepath.Join(s.root, historyFile))
	if err != nil {
		return fmt.Errorf("creating history file: %w", err)
	}
	defer f.Close()
	if err := WriteHistory(f, history); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return f.Close()
}

func (s *Store) loadSavings(st *session.State) error {
	f, err := os.Open(filepath.Join(s.root, savingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening savings file: %w", err)
	}
	defer f.Close()

	rows, err := ReadSavings(f)
	if err != nil {
		return err
	}
	for _, r := range rows {
		switch r.Stage {
		case savStageReview:
			st.ReviewQueue = append(st.ReviewQueue, r.Entry)
		default:
			st.PendingSavings[r.AccountID] = append(st.PendingSavings[r.AccountID], r.Entry)
		}
	}
	return nil
}

func (s *Store) saveSavings(st session.State) error {
	accountIDs := make([]string, 0, len(st.PendingSavings))
	for id := range st.PendingSavings {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	var rows []SavingsRow
	for _, id := range accountIDs {
		for _, e := range st.PendingSavings[id] {
			rows = append(rows, SavingsRow{Stage: savStagePending, AccountID: id, Entry: e})
		}
	}
	for _, e := range st.ReviewQueue {
		rows = append(rows, SavingsRow{Stage: savStageReview, Entry: e})
	}

	f, err := os.Create(filepath.Join(s.root, savingsFile))
	if err != nil {
		return fmt.Errorf("creating savings file: %w", err)
	}
	defer f.Close()
	if err := WriteSavings(f, rows); err != nil {
		return fmt.Errorf("writing savings: %w", err)
	}
	return f.Close()
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// accountFileName maps an account id to a safe file name.
func accountFileName(accountID string) string {
	return unsafeFileChars.ReplaceAllString(accountID, "_") + ".csv"
}
