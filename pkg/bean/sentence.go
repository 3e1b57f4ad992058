package bean

import (
	"strings"

	"beanbot/pkg/ledger"
)

// truncateAccount keeps the configured contiguous segment range of an
// account path, so sibling sub-accounts project onto the same token.
func (m *Manager) truncateAccount(account string) string {
	segments := strings.Split(account, ":")
	lo, hi := m.cfg.Beancount.AccountRange[0], m.cfg.Beancount.AccountRange[1]+1
	if lo > len(segments) {
		lo = len(segments)
	}
	if hi > len(segments) {
		hi = len(segments)
	}
	if lo >= hi {
		return account
	}
	return strings.Join(segments[lo:hi], ":")
}

func escapeQuotes(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// sentence projects a transaction into its natural-language form:
// `"<payee>" "<description>" <account_1> <account_2> ... [#tag ...]`.
// The result is both the embedding input and a re-tokenizable template for
// fallback reconstruction, so payee and description are quoted with inner
// quotes escaped.
func (m *Manager) sentence(txn *ledger.Transaction) string {
	var b strings.Builder
	b.WriteString(`"` + escapeQuotes(txn.Payee) + `"`)
	b.WriteString(` "` + escapeQuotes(txn.Narration) + `"`)
	for _, posting := range txn.Postings {
		b.WriteString(" " + m.truncateAccount(posting.Account))
	}
	for _, tag := range txn.Tags {
		b.WriteString(" #" + tag)
	}
	return b.String()
}
