package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// indexCmd represents the index command.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the transaction history index",
	Long: `Rebuild the vector index over the transaction history.

This command:
1. Projects recent transactions into natural-language sentences
2. Collapses repeated sentences, counting their occurrences
3. Requests embeddings for each unique sentence in batches
4. Replaces the backing store with the fresh index

Example:
  beanbot index`,
	Run: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) {
	manager, closer := setup()
	defer closer()

	slog.Info("Rebuilding history index")
	tokens, err := manager.BuildIndex(context.Background())
	exitOnError(err, "failed to rebuild index")

	fmt.Printf("Index rebuilt (%d embedding tokens used)\n", tokens)
}
