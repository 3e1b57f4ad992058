package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// queryCmd represents the query command.
var queryCmd = &cobra.Command{
	Use:   "query <bql>",
	Short: "Run a BQL query against the ledger",
	Long: `Run a Beancount Query Language statement through bean-query and
print the tabular result.

Example:
  beanbot query "SELECT account, sum(position) GROUP BY account"`,
	Args: cobra.ExactArgs(1),
	Run:  runQuery,
}

func runQuery(cmd *cobra.Command, args []string) {
	manager, closer := setup()
	defer closer()

	result, err := manager.RunQuery(args[0])
	exitOnError(err, "query failed")

	printResult(result.Columns, result.Rows)
}

func printResult(columns []string, rows [][]string) {
	if len(columns) > 0 {
		fmt.Println(strings.Join(columns, "\t"))
	}
	for _, row := range rows {
		fmt.Println(strings.Join(row, "\t"))
	}
}
