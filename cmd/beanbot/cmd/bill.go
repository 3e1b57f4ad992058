package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// billCmd represents the bill command.
var billCmd = &cobra.Command{
	Use:   "bill",
	Short: "Report account changes over a date range",
	Long: `Report position changes grouped by account over a date range,
covering every account rather than expenses alone.

Without flags the report covers today. The end date is exclusive.

Example:
  beanbot bill
  beanbot bill --from 2024-01-01 --to 2024-02-01`,
	Run: runBill,
}

func init() {
	addReportFlags(billCmd)
}

func runBill(cmd *cobra.Command, args []string) {
	manager, closer := setup()
	defer closer()

	start, end := reportRange()
	query := fmt.Sprintf(
		`SELECT ROOT(account, %d) as acc, cost(sum(position)) AS cost `+
			`WHERE date>=%s AND date<%s GROUP BY acc ORDER BY acc;`,
		reportLevel, start, end)

	result, err := manager.RunQuery(query)
	exitOnError(err, "failed to fetch account changes")

	printReport(fmt.Sprintf("Account changes between %s - %s", start, end), result)
}
