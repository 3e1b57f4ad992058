package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

var commitResult bool

// generateCmd represents the generate command.
var generateCmd = &cobra.Command{
	Use:   "generate <shorthand>...",
	Short: "Resolve a shorthand line into transaction candidates",
	Long: `Resolve a shorthand expense line into one or more Beancount
transaction candidates.

The shorthand grammar is:
  <amount> <outflow_account> [<inflow_account>] <payee> [<description>] [#tag]...

Account fragments are matched as substrings of currently open accounts.
When the direct build fails, beanbot falls back to the transaction
history index and, if enabled, the generative completion service.

Example:
  beanbot generate 4.00 BofA Food McDonalds "Big Mac"
  beanbot generate --commit 4.00 BofA Food McDonalds`,
	Args: cobra.MinimumNArgs(1),
	Run:  runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&commitResult, "commit", false, "Append the first candidate to the ledger")
}

func runGenerate(cmd *cobra.Command, args []string) {
	manager, closer := setup()
	defer closer()

	line := strings.Join(args, " ")
	slog.Debug("Resolving shorthand", "line", line)

	candidates, err := manager.Generate(context.Background(), line)
	exitOnError(err, "failed to resolve shorthand")

	for i, candidate := range candidates {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(candidate)
	}

	if commitResult {
		exitOnError(manager.Commit(candidates[0]), "failed to commit transaction")
		slog.Info("Transaction committed")
	}
}
