// Package vecdb provides the embedding-indexed transaction history store.
// Two interchangeable backends implement the same contract: a flat JSON
// document scored by brute-force cosine similarity, and a SQLite table with
// a native vector index. Rebuilds replace the whole store; querying an
// unbuilt store returns no matches rather than an error.
package vecdb

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendAuto   = "auto"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Entry is one indexed history transaction.
type Entry struct {
	// Sentence is the natural-language projection used as embedding input.
	Sentence string `json:"sentence"`
	// Content is the literal source text of the transaction.
	Content string `json:"content"`
	// Hash identifies the transaction independent of sentence equality.
	Hash string `json:"hash"`
	// Occurrence counts historical transactions that collapsed onto the
	// same sentence.
	Occurrence int       `json:"occurrence"`
	Embedding  []float32 `json:"embedding"`
}

// Match is a query result with its similarity and composite score.
type Match struct {
	Entry
	Similarity float64
	Score      float64
}

// Store is the query contract shared by both backends.
type Store interface {
	// Build replaces the store content with the given entries.
	Build(entries []Entry) error
	// Query returns up to k entries by cosine similarity, re-ranked by
	// the composite occurrence-weighted score.
	Query(embedding []float32, sentence string, k int) ([]Match, error)
	Close() error
}

// Open picks a backend and opens the store under dir. With BackendAuto the
// SQLite store is preferred and the JSON store is the fallback when the
// native vector extension is unavailable.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, "tx_db.sqlite"))
	case BackendJSON:
		return NewJSONStore(filepath.Join(dir, "tx_db.json")), nil
	case BackendAuto, "":
		store, err := NewSQLiteStore(filepath.Join(dir, "tx_db.sqlite"))
		if err == nil {
			return store, nil
		}
		slog.Debug("sqlite vector store unavailable, using json store", "error", err)
		return NewJSONStore(filepath.Join(dir, "tx_db.json")), nil
	default:
		return nil, fmt.Errorf("unknown vector store backend: %q", backend)
	}
}
