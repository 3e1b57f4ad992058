package bean

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"beanbot/pkg/config"
	"beanbot/pkg/ledger"
	"beanbot/pkg/llm"
	"beanbot/pkg/vecdb"
)

const testLedger = `option "operating_currency" "USD"
2020-01-01 open Assets:BofA:Checking
2020-01-01 open Assets:Cash
2020-01-01 open Liabilities:CreditCard
2020-01-01 open Expenses:Food
2020-01-01 open Expenses:Transport

2023-05-01 * "Kin Soy" "Eating"
  Liabilities:CreditCard	-12.00 USD
  Expenses:Food

2023-05-02 * "Metro" "Subway fare"
  Assets:Cash	-2.50 USD
  Expenses:Transport	2.50 USD
`

type fakeEmbedder struct {
	calls [][]string
	err   error
}

func (f *fakeEmbedder) Embeddings(_ context.Context, texts []string) ([][]float32, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	f.calls = append(f.calls, append([]string(nil), texts...))
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0}
	}
	return vectors, len(texts), nil
}

type fakeStore struct {
	matches []vecdb.Match
	built   []vecdb.Entry
	queries int
	err     error
}

func (f *fakeStore) Build(entries []vecdb.Entry) error {
	f.built = entries
	return f.err
}

func (f *fakeStore) Query(_ []float32, _ string, k int) ([]vecdb.Match, error) {
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.matches) {
		return f.matches[:k], nil
	}
	return f.matches, nil
}

func (f *fakeStore) Close() error { return nil }

type fakeCompleter struct {
	response string
	messages []llm.Message
	calls    int
	err      error
}

func (f *fakeCompleter) ChatCompletion(_ context.Context, messages []llm.Message) (string, error) {
	f.calls++
	f.messages = append([]llm.Message(nil), messages...)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func writeLedgerFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.bean")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write ledger: %v", err)
	}
	return path
}

func newTestManager(t *testing.T, content string) (*Manager, *fakeEmbedder, *fakeStore, *fakeCompleter) {
	t.Helper()
	path := writeLedgerFile(t, content)
	cfg := config.Default()
	cfg.Beancount.Filename = path
	cfg.Beancount.Currency = "USD"

	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	completer := &fakeCompleter{}
	m, err := NewManager(cfg, ledger.NewEngine(path), store, embedder, completer)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	m.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	}
	return m, embedder, store, completer
}

func TestAccountsOpenOrder(t *testing.T) {
	m, _, _, _ := newTestManager(t, testLedger)

	want := []string{
		"Assets:BofA:Checking",
		"Assets:Cash",
		"Liabilities:CreditCard",
		"Expenses:Food",
		"Expenses:Transport",
	}
	got := m.Accounts()
	if len(got) != len(want) {
		t.Fatalf("Accounts() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Accounts()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCloseRemovesAccount(t *testing.T) {
	m, _, _, _ := newTestManager(t, `2020-01-01 open Assets:Old
2020-01-01 open Assets:Current
2021-01-01 close Assets:Old
`)

	got := m.Accounts()
	if len(got) != 1 || got[0] != "Assets:Current" {
		t.Fatalf("Accounts() = %v, want [Assets:Current]", got)
	}
}

func TestReloadOnFileChange(t *testing.T) {
	m, _, _, _ := newTestManager(t, testLedger)

	if got := len(m.Accounts()); got != 5 {
		t.Fatalf("initial Accounts() length = %d, want 5", got)
	}

	path := m.cfg.Beancount.Filename
	updated := testLedger + "2024-01-01 open Assets:Savings\n"
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("rewrite ledger: %v", err)
	}
	// Force a visible mtime change even on coarse filesystem clocks.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	got := m.Accounts()
	if len(got) != 6 || got[5] != "Assets:Savings" {
		t.Fatalf("Accounts() after change = %v, want Assets:Savings appended", got)
	}
}

func TestEntriesSeesNewTransactions(t *testing.T) {
	m, _, _, _ := newTestManager(t, testLedger)

	before := len(m.Entries())

	path := m.cfg.Beancount.Filename
	updated := testLedger + "\n2024-02-01 * \"Metro\" \"Subway fare\"\n  Assets:Cash\t-2.50 USD\n  Expenses:Transport\t2.50 USD\n"
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("rewrite ledger: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if got := len(m.Entries()); got != before+1 {
		t.Fatalf("Entries() length = %d, want %d", got, before+1)
	}
}

func TestCurrencyFallback(t *testing.T) {
	m, _, _, _ := newTestManager(t, testLedger)

	m.cfg.Beancount.Currency = "CNY"
	if got := m.currency(); got != "CNY" {
		t.Errorf("currency() = %q, want configured CNY", got)
	}

	m.cfg.Beancount.Currency = ""
	if got := m.currency(); got != "USD" {
		t.Errorf("currency() = %q, want operating_currency USD", got)
	}
}
