package vecdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"sync"
)

// JSONStore keeps the full entry list in a single JSON document and scores
// queries by linear scan.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore creates a JSONStore backed by the given file. The file is
// only created by the first Build.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Build writes the entries as one JSON document, replacing any previous
// store content atomically.
func (s *JSONStore) Build(entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// Query scans every entry, keeps the k most similar, and re-ranks them by
// the composite score. An unbuilt store yields no matches.
func (s *JSONStore) Query(embedding []float32, sentence string, k int) ([]Match, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("json vector store is not built", "path", s.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode store file: %w", err)
	}

	matches := make([]Match, 0, len(entries))
	for _, entry := range entries {
		similarity := CosineSimilarity(entry.Embedding, embedding)
		matches = append(matches, Match{
			Entry:      entry,
			Similarity: similarity,
			Score:      Score(similarity, entry.Occurrence),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// Close implements Store.
func (s *JSONStore) Close() error { return nil }
