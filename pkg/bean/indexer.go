package bean

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"beanbot/pkg/ledger"
	"beanbot/pkg/vecdb"
)

// embedBatchSize is the number of sentences sent per embedding request.
const embedBatchSize = 32

// BuildIndex rebuilds the history index from the most recent transactions,
// replacing the previous index entirely. It returns the embedding token
// usage reported by the service.
func (m *Manager) BuildIndex(ctx context.Context) (int, error) {
	if !m.cfg.Embedding.Enable {
		return 0, fmt.Errorf("embedding is not enabled")
	}

	entries := m.Entries()
	// File contents are cached only for the duration of this build.
	contents := make(map[string][]string)

	unique := make(map[string]*vecdb.Entry)
	var ordered []*vecdb.Entry
	for i := len(entries) - 1; i >= 0; i-- {
		txn, ok := entries[i].(*ledger.Transaction)
		if !ok {
			continue
		}
		sentence := m.sentence(txn)
		if entry, seen := unique[sentence]; seen {
			entry.Occurrence++
			continue
		}
		entry := &vecdb.Entry{
			Sentence:   sentence,
			Content:    readSpan(contents, txn),
			Hash:       txn.Hash(),
			Occurrence: 1,
		}
		unique[sentence] = entry
		ordered = append(ordered, entry)
		if len(ordered) >= m.cfg.Embedding.TransactionAmount {
			break
		}
	}

	totalTokens := 0
	for start := 0; start < len(ordered); start += embedBatchSize {
		end := min(start+embedBatchSize, len(ordered))
		texts := make([]string, 0, end-start)
		for _, entry := range ordered[start:end] {
			texts = append(texts, entry.Sentence)
		}
		vectors, usage, err := m.embedder.Embeddings(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("failed to embed batch: %w", err)
		}
		for i, vector := range vectors {
			ordered[start+i].Embedding = vector
		}
		totalTokens += usage
	}

	flat := make([]vecdb.Entry, len(ordered))
	for i, entry := range ordered {
		flat[i] = *entry
	}
	if err := m.store.Build(flat); err != nil {
		return 0, fmt.Errorf("failed to build index: %w", err)
	}

	slog.Info("history index rebuilt", "entries", len(flat), "tokens", totalTokens)
	return totalTokens, nil
}

// readSpan returns the literal source text of a transaction, from its
// statement line through its last posting line.
func readSpan(contents map[string][]string, txn *ledger.Transaction) string {
	lines, ok := contents[txn.Meta.Filename]
	if !ok {
		data, err := os.ReadFile(txn.Meta.Filename)
		if err != nil {
			slog.Warn("cannot read transaction source", "file", txn.Meta.Filename, "error", err)
			contents[txn.Meta.Filename] = nil
			return ""
		}
		lines = strings.Split(string(data), "\n")
		contents[txn.Meta.Filename] = lines
	}
	if lines == nil {
		return ""
	}

	start, end := txn.Meta.Line, txn.Meta.Line
	for _, posting := range txn.Postings {
		if posting.Meta.Line > end {
			end = posting.Meta.Line
		}
	}
	if start < 1 || end > len(lines) {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}
