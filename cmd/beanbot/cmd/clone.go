package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var commitClone bool

// cloneCmd represents the clone command.
var cloneCmd = &cobra.Command{
	Use:   "clone [transaction]",
	Short: "Re-date a pasted transaction to today",
	Long: `Extract the first transaction from the given text and rewrite its
date to today. The text is read from the argument, or from standard
input when no argument is given.

Example:
  beanbot clone < old-transaction.bean
  beanbot clone --commit < old-transaction.bean`,
	Args: cobra.MaximumNArgs(1),
	Run:  runClone,
}

func init() {
	cloneCmd.Flags().BoolVar(&commitClone, "commit", false, "Append the cloned transaction to the ledger")
}

func runClone(cmd *cobra.Command, args []string) {
	manager, closer := setup()
	defer closer()

	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		exitOnError(err, "failed to read standard input")
		text = string(data)
	}

	cloned, err := manager.CloneTransaction(strings.TrimSpace(text))
	exitOnError(err, "failed to clone transaction")

	fmt.Println(cloned)

	if commitClone {
		exitOnError(manager.Commit(cloned), "failed to commit transaction")
	}
}
