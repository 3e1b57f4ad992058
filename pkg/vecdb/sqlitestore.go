package vecdb

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var vecExtensionOnce sync.Once

// SQLiteStore keeps entries in a SQLite database with a vec0 virtual table
// for native nearest-neighbor queries.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the database at path and verifies that
// the vector extension is usable. Tables are created by the first Build.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	vecExtensionOnce.Do(sqlite_vec.Auto)

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var version string
	if err := db.QueryRow("SELECT vec_version()").Scan(&version); err != nil {
		db.Close()
		return nil, fmt.Errorf("vector extension unavailable: %w", err)
	}
	slog.Debug("opened sqlite vector store", "path", path, "vec_version", version)

	return &SQLiteStore{db: db}, nil
}

// Build drops and recreates both tables, then inserts every entry with its
// serialized vector inside one transaction so readers never observe a
// partial rebuild.
func (s *SQLiteStore) Build(entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dimension := 1
	if len(entries) > 0 {
		dimension = len(entries[0].Embedding)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		"DROP TABLE IF EXISTS vec_items",
		"DROP TABLE IF EXISTS transactions",
		fmt.Sprintf("CREATE VIRTUAL TABLE vec_items USING vec0(embedding float[%d])", dimension),
		`CREATE TABLE transactions (
			id INTEGER PRIMARY KEY,
			hash TEXT UNIQUE,
			occurrence INTEGER NOT NULL,
			sentence TEXT NOT NULL,
			content TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to prepare tables: %w", err)
		}
	}

	for i, entry := range entries {
		blob, err := sqlite_vec.SerializeFloat32(entry.Embedding)
		if err != nil {
			return fmt.Errorf("failed to serialize vector: %w", err)
		}
		id := i + 1
		if _, err := tx.Exec("INSERT INTO vec_items (rowid, embedding) VALUES (?, ?)", id, blob); err != nil {
			return fmt.Errorf("failed to insert vector: %w", err)
		}
		if _, err := tx.Exec(
			"INSERT INTO transactions (id, hash, occurrence, sentence, content) VALUES (?, ?, ?, ?, ?)",
			id, entry.Hash, entry.Occurrence, entry.Sentence, entry.Content,
		); err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rebuild: %w", err)
	}
	return nil
}

// Query retrieves the k nearest entries by cosine distance and re-ranks
// them by the composite score. An unbuilt store yields no matches.
func (s *SQLiteStore) Query(embedding []float32, sentence string, k int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// The tables only exist once an index build has run.
	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'vec_items'").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Warn("sqlite vector store is not built")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to inspect store schema: %w", err)
	}

	blob, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize query vector: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT t.id, t.hash, t.occurrence, t.sentence, t.content,
		       vec_distance_cosine(v.embedding, ?) AS distance
		FROM vec_items v JOIN transactions t ON t.id = v.rowid
		ORDER BY distance LIMIT ?`, blob, k)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			match    Match
			id       int
			distance float64
		)
		if err := rows.Scan(&id, &match.Hash, &match.Occurrence, &match.Sentence, &match.Content, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		match.Similarity = 1 - distance
		match.Score = Score(match.Similarity, match.Occurrence)
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
