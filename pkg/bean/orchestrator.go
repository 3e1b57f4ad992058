package bean

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"beanbot/pkg/shorthand"
)

// Generate resolves one shorthand line into one or more candidate
// transaction texts. Tiers run in order: the exact build, then — depending
// on configuration — the generative completion and the similarity rewrite
// of nearest history neighbors. It fails only when every enabled tier
// fails; an unrecoverable build error surfaces immediately.
func (m *Manager) Generate(ctx context.Context, line string) ([]string, error) {
	args, err := shorthand.Tokenize(line)
	if err != nil {
		return nil, err
	}

	txn, err := m.BuildTransaction(args)
	if err == nil {
		return []string{txn}, nil
	}
	if !recoverable(err) {
		return nil, err
	}
	buildErr := err
	// Without non-amount tokens there is nothing for the fallback tiers
	// to embed.
	if len(args) < 2 {
		return nil, buildErr
	}
	slog.Debug("exact build failed, trying fallback tiers", "error", err)

	vecEnabled := m.cfg.Embedding.Enable
	ragEnabled := m.cfg.RAG.Enable

	if ragEnabled && (m.cfg.RAG.AttemptFirst || !vecEnabled) {
		return m.generateCompletion(ctx, args)
	}
	if vecEnabled {
		candidates, err := m.similarityCandidates(ctx, args)
		if err == nil {
			return candidates, nil
		}
		if !errors.Is(err, ErrEmptyResult) {
			return nil, err
		}
		if ragEnabled {
			return m.generateCompletion(ctx, args)
		}
	}
	return nil, buildErr
}

// similarityCandidates embeds the non-amount tokens, queries the history
// index and retries the builder once per rewritten argument list. A rewrite
// that fails the builder is skipped without aborting its siblings.
func (m *Manager) similarityCandidates(ctx context.Context, args []string) ([]string, error) {
	query := strings.Join(args[1:], " ")
	vectors, _, err := m.embedder.Embeddings(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	matches, err := m.store.Query(vectors[0], query, m.cfg.Embedding.Candidates)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, match := range matches {
		newArgs, ok := rewriteArgs(args, match.Sentence)
		if !ok {
			continue
		}
		txn, err := m.BuildTransaction(newArgs)
		if err != nil {
			slog.Debug("similarity candidate failed to build", "sentence", match.Sentence, "error", err)
			continue
		}
		candidates = append(candidates, txn)
		if len(candidates) >= m.cfg.Embedding.OutputAmount {
			break
		}
	}
	if len(candidates) == 0 {
		return nil, ErrEmptyResult
	}
	return candidates, nil
}

// rewriteArgs rebuilds an argument list from a matched history sentence,
// keeping the amount from the original input and taking accounts, payee,
// description and tags from the match.
func rewriteArgs(args []string, sentence string) ([]string, bool) {
	fields, err := shorthand.Tokenize(sentence)
	if err != nil || len(fields) < 4 {
		return nil, false
	}
	newArgs := []string{args[0], fields[2], fields[3], fields[0], fields[1]}
	for _, field := range fields[4:] {
		if strings.HasPrefix(field, "#") {
			newArgs = append(newArgs, field)
		}
	}
	return newArgs, true
}
