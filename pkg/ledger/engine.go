package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// QueryResult is the tabular output of a ledger query.
type QueryResult struct {
	Columns []string
	Rows    [][]string
}

// Engine wraps the external ledger tooling for one main file.
type Engine struct {
	// Filename is the main beancount file.
	Filename string
	// QueryCommand and FormatCommand name the ledger engine binaries.
	// They exist as fields so tests can point them at stubs.
	QueryCommand  string
	FormatCommand string
}

// NewEngine creates an Engine for the given main file.
func NewEngine(filename string) *Engine {
	return &Engine{
		Filename:      filename,
		QueryCommand:  "bean-query",
		FormatCommand: "bean-format",
	}
}

// Load loads the main file and its includes.
func (e *Engine) Load() (*Ledger, error) {
	return Load(e.Filename)
}

// RunQuery executes a BQL query through the engine's query tool and parses
// its CSV output into a header row and data rows.
func (e *Engine) RunQuery(query string) (*QueryResult, error) {
	out, err := exec.Command(e.QueryCommand, "-f", "csv", e.Filename, query).Output()
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(out))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse query output: %w", err)
	}
	if len(records) == 0 {
		return &QueryResult{}, nil
	}
	return &QueryResult{Columns: records[0], Rows: records[1:]}, nil
}

// Append appends a transaction to the main file and reformats it in place.
// A formatter failure is logged but does not undo the append.
func (e *Engine) Append(transaction string) error {
	content := "\n" + strings.TrimRight(transaction, "\n") + "\n"

	f, err := os.OpenFile(e.Filename, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger file for appending: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("failed to write to ledger file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close ledger file: %w", err)
	}

	if out, err := exec.Command(e.FormatCommand, "-o", e.Filename, e.Filename).CombinedOutput(); err != nil {
		slog.Warn("ledger formatter failed", "error", err, "output", string(out))
	}
	return nil
}
