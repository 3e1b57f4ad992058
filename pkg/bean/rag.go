package bean

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"beanbot/pkg/ledger"
	"beanbot/pkg/llm"
)

// completionPrompt instructs the model to assemble one complete beancount
// transaction from the user's shorthand and the reference material.
const completionPrompt = `The user keeps a double-entry ledger in beancount and types terse shorthand lines that a program expands into full transactions. The shorthand grammar is ` +
	"`<amount> <outflow_account> [<inflow_account>] <payee> [<description>] [#<tag> ...]`" + `, where accounts are fuzzy-matched fragments.

The user's input may be incomplete: the payee, the description, or one or both accounts can be missing. Combine the input with the reference material below to piece together one complete transaction record.

Follow these rules:
1. Place every word of the user's input where it fits best; do not echo the shorthand grammar itself.
2. Fill anything missing from the reference records.
3. Output only the complete transaction record, without quotes or delimiters around it.

Today's date: %s
Reference account names: %s
Reference records, separated by a dash delimiter:
%s
`

var txnDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// generateCompletion asks the completion service for a full transaction,
// using the nearest history entries as style references, and re-dates the
// result to today.
func (m *Manager) generateCompletion(ctx context.Context, args []string) ([]string, error) {
	stripped := strings.Join(args[1:], " ")

	vectors, _, err := m.embedder.Embeddings(ctx, []string{stripped})
	if err != nil {
		return nil, err
	}
	matches, err := m.store.Query(vectors[0], stripped, m.cfg.Embedding.Candidates)
	if err != nil {
		return nil, err
	}
	references := make([]string, 0, len(matches))
	for _, match := range matches {
		references = append(references, match.Content)
	}

	var accounts []string
	for _, fragment := range args[1:] {
		if account, ok := m.FindAccount(fragment); ok {
			accounts = append(accounts, account)
		}
	}

	prompt := fmt.Sprintf(completionPrompt,
		m.now().Format("2006-01-02"),
		strings.Join(accounts, ", "),
		strings.Join(references, "\n------\n"))

	content, err := m.completer.ChatCompletion(ctx, []llm.Message{
		{Role: "system", Content: prompt},
		{Role: "user", Content: strings.Join(args, " ")},
	})
	if err != nil {
		return nil, err
	}

	cloned, err := m.CloneTransaction(strings.Trim(content, "`\n"))
	if err != nil {
		return nil, err
	}
	return []string{cloned}, nil
}

// CloneTransaction extracts the first transaction from the given text,
// delimited by the line numbers of its statement and postings, and rewrites
// its date to today. It returns ErrNoTransaction when the text contains no
// parsable transaction.
func (m *Manager) CloneTransaction(text string) (string, error) {
	parsed := ledger.Parse(text)

	var txn *ledger.Transaction
	for _, ent := range parsed.Entries {
		if t, ok := ent.(*ledger.Transaction); ok {
			txn = t
			break
		}
	}
	if txn == nil {
		return "", ErrNoTransaction
	}

	start, end := txn.Meta.Line, txn.Meta.Line
	for _, posting := range txn.Postings {
		if posting.Meta.Line < start {
			start = posting.Meta.Line
		}
		if posting.Meta.Line > end {
			end = posting.Meta.Line
		}
	}

	segments := strings.Split(text, "\n")[start-1 : end]
	segments[0] = txnDateRe.ReplaceAllString(segments[0], m.now().Format("2006-01-02"))
	return strings.Join(segments, "\n"), nil
}
