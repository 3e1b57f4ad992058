package bean

import (
	"strings"

	"beanbot/pkg/ledger"
)

// FindAccount returns the first currently open account containing fragment
// as a substring. Ties resolve to account open order.
func (m *Manager) FindAccount(fragment string) (string, bool) {
	for _, account := range m.Accounts() {
		if strings.Contains(account, fragment) {
			return account, true
		}
	}
	return "", false
}

// FindAccountByPayee scans the history from most recent to oldest for a
// transaction with the given payee and picks one posting from it: the
// implicit leg if present, else the first expense posting. The implicit leg
// is the strongest signal of the account the user meant.
func (m *Manager) FindAccountByPayee(payee string) (string, bool) {
	entries := m.Entries()

	var target *ledger.Transaction
	for i := len(entries) - 1; i >= 0; i-- {
		txn, ok := entries[i].(*ledger.Transaction)
		if !ok {
			continue
		}
		if txn.Payee == payee {
			target = txn
			break
		}
	}
	if target == nil {
		return "", false
	}

	expenseAccount := ""
	for _, posting := range target.Postings {
		if posting.Amount == nil {
			return posting.Account, true
		}
		if expenseAccount == "" && strings.HasPrefix(posting.Account, "Expenses:") {
			expenseAccount = posting.Account
		}
	}
	if expenseAccount != "" {
		return expenseAccount, true
	}
	return "", false
}
