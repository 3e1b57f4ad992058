// Package bean implements the shorthand-to-transaction resolution pipeline:
// a ledger state cache, fuzzy account resolution, deterministic transaction
// synthesis, and the tiered fallback chain over the history index and the
// completion service.
package bean

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"beanbot/pkg/config"
	"beanbot/pkg/ledger"
	"beanbot/pkg/llm"
	"beanbot/pkg/vecdb"
)

// Embedder provides vectors for input texts.
type Embedder interface {
	Embeddings(ctx context.Context, texts []string) ([][]float32, int, error)
}

// Completer returns a chat completion for the given messages.
type Completer interface {
	ChatCompletion(ctx context.Context, messages []llm.Message) (string, error)
}

// Manager owns the mirrored ledger state and runs the resolution pipeline.
// It is constructed once at process start and passed to whichever layer
// needs ledger access. Reads are safe for concurrent use; reloads replace
// the cached state as a single atomic step.
type Manager struct {
	cfg       *config.Config
	engine    *ledger.Engine
	store     vecdb.Store
	embedder  Embedder
	completer Completer
	now       func() time.Time

	mu           sync.RWMutex
	led          *ledger.Ledger
	accounts     []string
	accountFiles map[string]bool
	mtimes       map[string]time.Time
}

// NewManager loads the ledger and returns a ready Manager.
func NewManager(cfg *config.Config, engine *ledger.Engine, store vecdb.Store, embedder Embedder, completer Completer) (*Manager, error) {
	m := &Manager{
		cfg:       cfg,
		engine:    engine,
		store:     store,
		embedder:  embedder,
		completer: completer,
		now:       time.Now,
	}
	if err := m.reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// reload loads the ledger and replaces all cached state. Callers must hold
// the write lock, except during construction.
func (m *Manager) reload() error {
	led, err := m.engine.Load()
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	if len(led.Errors) > 0 {
		slog.Warn("ledger loaded with errors", "count", len(led.Errors), "first", led.Errors[0].Message)
	}

	// Open accounts in open order, so substring resolution is
	// deterministic.
	var accounts []string
	accountFiles := make(map[string]bool)
	for _, ent := range led.Entries {
		switch e := ent.(type) {
		case *ledger.Open:
			accounts = append(accounts, e.Account)
			accountFiles[e.Meta.Filename] = true
		case *ledger.Close:
			for i, account := range accounts {
				if account == e.Account {
					accounts = append(accounts[:i], accounts[i+1:]...)
					break
				}
			}
			accountFiles[e.Meta.Filename] = true
		}
	}

	mtimes := make(map[string]time.Time, len(led.Options.Includes))
	for _, file := range led.Options.Includes {
		if info, err := os.Stat(file); err == nil {
			mtimes[file] = info.ModTime()
		}
	}

	m.led = led
	m.accounts = accounts
	m.accountFiles = accountFiles
	m.mtimes = mtimes
	return nil
}

// staleLocked reports whether any watched file changed on disk. With
// accountsOnly, the check is limited to files declaring account opens and
// closes, which keeps pure account reads from reloading on every new
// transaction file write.
func (m *Manager) staleLocked(accountsOnly bool) bool {
	for file, mtime := range m.mtimes {
		if accountsOnly && !m.accountFiles[file] {
			continue
		}
		info, err := os.Stat(file)
		if err != nil || !info.ModTime().Equal(mtime) {
			return true
		}
	}
	return false
}

func (m *Manager) refresh(accountsOnly bool) {
	m.mu.RLock()
	stale := m.staleLocked(accountsOnly)
	m.mu.RUnlock()
	if !stale {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.staleLocked(accountsOnly) {
		return
	}
	if err := m.reload(); err != nil {
		slog.Error("ledger reload failed, serving stale state", "error", err)
	}
}

// Accounts returns the currently open account paths in open order.
func (m *Manager) Accounts() []string {
	m.refresh(true)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.accounts))
	copy(out, m.accounts)
	return out
}

// Entries returns the ordered ledger history.
func (m *Manager) Entries() []ledger.Directive {
	m.refresh(false)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Directive, len(m.led.Entries))
	copy(out, m.led.Entries)
	return out
}

// RunQuery passes a BQL query through to the ledger engine.
func (m *Manager) RunQuery(query string) (*ledger.QueryResult, error) {
	m.refresh(false)
	return m.engine.RunQuery(query)
}

// Commit appends a rendered transaction to the main ledger file and lets
// the engine reformat it.
func (m *Manager) Commit(transaction string) error {
	return m.engine.Append(transaction)
}

// currency returns the currency code for generated outflow legs.
func (m *Manager) currency() string {
	if m.cfg.Beancount.Currency != "" {
		return m.cfg.Beancount.Currency
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.led.Options.OperatingCurrency != "" {
		return m.led.Options.OperatingCurrency
	}
	return "USD"
}
