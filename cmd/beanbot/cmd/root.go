// Package cmd provides CLI commands for beanbot.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"beanbot/pkg/bean"
	"beanbot/pkg/config"
	"beanbot/pkg/ledger"
	"beanbot/pkg/llm"
	"beanbot/pkg/vecdb"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "beanbot",
	Short: "Turn shorthand expense lines into Beancount transactions",
	Long: `beanbot resolves terse shorthand lines like

  4.00 BofA Food McDonalds 'Big Mac'

into full Beancount transactions against your own ledger.

It supports:
- Fuzzy account resolution against currently open accounts
- A vector index over transaction history for fallback suggestions
- An optional generative completion fallback
- Expense and bill reports through bean-query

Example:
  beanbot generate 4.00 BofA Food McDonalds
  beanbot index`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is beanbot.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(expenseCmd)
	rootCmd.AddCommand(billCmd)
	rootCmd.AddCommand(cloneCmd)
}

// Helper function to get config file path.
func getConfigFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	if _, err := os.Stat("beanbot.yaml"); err == nil {
		return "beanbot.yaml"
	}
	return "" // Defaults only
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}

// setup wires the full pipeline: configuration, ledger engine, history
// store, the embedding and completion clients, and the manager on top.
// The returned closer releases the history store.
func setup() (*bean.Manager, func()) {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	engine := ledger.NewEngine(cfg.Beancount.Filename)

	storeDir := cfg.Embedding.DBPath
	if storeDir == "" {
		storeDir = filepath.Dir(cfg.Beancount.Filename)
	}
	slog.Debug("Opening history store", "backend", cfg.Embedding.DB, "dir", storeDir)
	store, err := vecdb.Open(cfg.Embedding.DB, storeDir)
	exitOnError(err, "failed to open history store")

	embedder := llm.NewClient(llm.ClientConfig{
		APIURL:  cfg.Embedding.APIURL,
		APIKey:  cfg.Embedding.APIKey,
		Model:   cfg.Embedding.Model,
		Timeout: cfg.Embedding.Timeout.Std(),
	})
	completer := llm.NewClient(llm.ClientConfig{
		APIURL:  cfg.RAG.APIURL,
		APIKey:  cfg.RAG.APIKey,
		Model:   cfg.RAG.Model,
		Timeout: cfg.RAG.Timeout.Std(),
	})

	manager, err := bean.NewManager(cfg, engine, store, embedder, completer)
	exitOnError(err, "failed to load ledger")

	return manager, func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close history store", "error", err)
		}
	}
}
