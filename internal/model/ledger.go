package model

// Account is one bank account tracked in the ledger, with its transactions
// in date order.
type Account struct {
	ID           string                `json:"id"`
	Label        string                `json:"label"`
	Type         string                `json:"type"` // checking, savings, credit, ...
	Transactions []AcceptedTransaction `json:"transactions"`
}

// LedgerState is a full snapshot of all accounts. Patch functions take a
// snapshot and return a new one; they never mutate their input.
type LedgerState struct {
	Accounts map[string]Account `json:"accounts"`
}

// NewLedgerState returns an empty ledger snapshot.
func NewLedgerState() LedgerState {
	return LedgerState{Accounts: make(map[string]Account)}
}

// Clone returns a copy of the state with the account map and each
// transaction slice copied, so the result can be modified freely.
func (s LedgerState) Clone() LedgerState {
	next := LedgerState{Accounts: make(map[string]Account, len(s.Accounts))}
	for id, acct := range s.Accounts {
		txns := make([]AcceptedTransaction, len(acct.Transactions))
		copy(txns, acct.Transactions)
		acct.Transactions = txns
		next.Accounts[id] = acct
	}
	return next
}

// LedgerPatch is a pure transition over a ledger snapshot. The caller (the
// store layer) decides how and where the result is persisted.
type LedgerPatch func(LedgerState) LedgerState
