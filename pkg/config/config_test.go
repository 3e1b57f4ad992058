package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Beancount.Filename != "main.bean" {
		t.Errorf("default filename = %q, expected main.bean", cfg.Beancount.Filename)
	}
	if !cfg.Embedding.Enable {
		t.Error("embedding should be enabled by default")
	}
	if cfg.RAG.Enable {
		t.Error("rag should be disabled by default")
	}
	if cfg.Embedding.DB != StoreAuto {
		t.Errorf("default store = %q, expected auto", cfg.Embedding.DB)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
beancount:
  filename: ledger/main.bean
  currency: USD
  account_range: [0, 1]
embedding:
  model: text-embedding-3-large
  candidates: 5
  output_amount: 2
  db: json
  timeout: 10s
rag:
  enable: true
  attempt_first: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Beancount.Filename != "ledger/main.bean" {
		t.Errorf("filename = %q", cfg.Beancount.Filename)
	}
	if cfg.Beancount.Currency != "USD" {
		t.Errorf("currency = %q", cfg.Beancount.Currency)
	}
	if cfg.Embedding.Candidates != 5 || cfg.Embedding.OutputAmount != 2 {
		t.Errorf("candidates/output = %d/%d", cfg.Embedding.Candidates, cfg.Embedding.OutputAmount)
	}
	if cfg.Embedding.Timeout.Std() != 10*time.Second {
		t.Errorf("timeout = %v", cfg.Embedding.Timeout)
	}
	// Unset keys keep their defaults.
	if cfg.Embedding.TransactionAmount != 1000 {
		t.Errorf("transaction_amount = %d, expected default 1000", cfg.Embedding.TransactionAmount)
	}
	if !cfg.RAG.Enable || cfg.RAG.AttemptFirst {
		t.Errorf("rag = %+v", cfg.RAG)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("EMBEDDING_API_KEY", "sk-embed")
	t.Setenv("RAG_API_KEY", "sk-rag")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Embedding.APIKey != "sk-embed" {
		t.Errorf("embedding api key = %q", cfg.Embedding.APIKey)
	}
	if cfg.RAG.APIKey != "sk-rag" {
		t.Errorf("rag api key = %q", cfg.RAG.APIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty filename", func(c *Config) { c.Beancount.Filename = "" }},
		{"inverted account range", func(c *Config) { c.Beancount.AccountRange = [2]int{2, 1} }},
		{"unknown store", func(c *Config) { c.Embedding.DB = "bolt" }},
		{"zero candidates", func(c *Config) { c.Embedding.Candidates = 0 }},
		{"zero output amount", func(c *Config) { c.Embedding.OutputAmount = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should have failed")
			}
		})
	}
}
