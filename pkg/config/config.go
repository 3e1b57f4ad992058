// Package config provides configuration management for beanbot.
// It loads a YAML configuration file and overlays secrets from
// environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so timeouts can be written as "30s" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Store backend selection for the history index.
const (
	StoreAuto   = "auto"
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	Beancount BeancountConfig `yaml:"beancount"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	RAG       RAGConfig       `yaml:"rag"`
}

// BeancountConfig represents ledger-related configuration.
type BeancountConfig struct {
	// Filename is the path of the main beancount file.
	Filename string `yaml:"filename"`
	// Currency is the currency code used on generated outflow legs.
	Currency string `yaml:"currency"`
	// AccountRange selects the contiguous account path segments kept when
	// projecting accounts into index sentences, e.g. [1, 2] keeps the
	// second and third segments of Assets:Bank:Checking:Sub.
	AccountRange [2]int `yaml:"account_range"`
}

// EmbeddingConfig represents the embedding service and history index
// configuration.
type EmbeddingConfig struct {
	Enable bool   `yaml:"enable"`
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
	// TransactionAmount is the number of most recent transactions indexed
	// by a rebuild.
	TransactionAmount int `yaml:"transaction_amount"`
	// Candidates is the number of nearest neighbors retrieved per query.
	Candidates int `yaml:"candidates"`
	// OutputAmount caps the candidate transactions returned to the caller.
	OutputAmount int `yaml:"output_amount"`
	// DB selects the backing store: auto, json or sqlite.
	DB string `yaml:"db"`
	// DBPath overrides the backing store location.
	DBPath  string   `yaml:"db_path"`
	Timeout Duration `yaml:"timeout"`
}

// RAGConfig represents the generative completion fallback configuration.
type RAGConfig struct {
	Enable bool   `yaml:"enable"`
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
	// AttemptFirst attempts the generative tier before the similarity
	// tier when both are enabled.
	AttemptFirst bool     `yaml:"attempt_first"`
	Timeout      Duration `yaml:"timeout"`
}

// Default returns a configuration with every recognized option set to its
// declared default.
func Default() *Config {
	return &Config{
		Beancount: BeancountConfig{
			Filename:     "main.bean",
			Currency:     "CNY",
			AccountRange: [2]int{1, 2},
		},
		Embedding: EmbeddingConfig{
			Enable:            true,
			APIURL:            "https://api.openai.com/v1/embeddings",
			Model:             "text-embedding-3-small",
			TransactionAmount: 1000,
			Candidates:        3,
			OutputAmount:      1,
			DB:                StoreAuto,
			Timeout:           Duration(30 * time.Second),
		},
		RAG: RAGConfig{
			Enable:       false,
			APIURL:       "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			AttemptFirst: true,
			Timeout:      Duration(60 * time.Second),
		},
	}
}

// Load loads configuration from a YAML file on top of the defaults.
// It also loads a .env file from the current directory if available, and
// overlays EMBEDDING_API_KEY and RAG_API_KEY from the environment so that
// secrets can stay out of the configuration file.
func Load(path string) (*Config, error) {
	// Try to load .env from current directory (ignore error if not found)
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if key := os.Getenv("EMBEDDING_API_KEY"); key != "" {
		cfg.Embedding.APIKey = key
	}
	if key := os.Getenv("RAG_API_KEY"); key != "" {
		cfg.RAG.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Beancount.Filename == "" {
		return fmt.Errorf("missing required configuration: beancount.filename")
	}
	if c.Beancount.AccountRange[0] < 0 || c.Beancount.AccountRange[1] < c.Beancount.AccountRange[0] {
		return fmt.Errorf("invalid beancount.account_range: %v", c.Beancount.AccountRange)
	}
	switch c.Embedding.DB {
	case StoreAuto, StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("invalid embedding.db: %q (expected auto, json or sqlite)", c.Embedding.DB)
	}
	if c.Embedding.Enable {
		if c.Embedding.Candidates <= 0 {
			return fmt.Errorf("embedding.candidates must be positive")
		}
		if c.Embedding.OutputAmount <= 0 {
			return fmt.Errorf("embedding.output_amount must be positive")
		}
	}
	return nil
}
