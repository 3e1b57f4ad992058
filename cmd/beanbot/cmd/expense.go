package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"beanbot/pkg/ledger"
)

var (
	reportFrom  string
	reportTo    string
	reportLevel int
)

// expenseCmd represents the expense command.
var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Report expenses over a date range",
	Long: `Report spending grouped by expense account over a date range.

Without flags the report covers today. The end date is exclusive.

Example:
  beanbot expense
  beanbot expense --from 2024-01-01 --to 2024-02-01 --level 3`,
	Run: runExpense,
}

func init() {
	addReportFlags(expenseCmd)
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&reportFrom, "from", "", "Start date (YYYY-MM-DD), default today")
	cmd.Flags().StringVar(&reportTo, "to", "", "End date (YYYY-MM-DD), exclusive, default tomorrow")
	cmd.Flags().IntVar(&reportLevel, "level", 2, "Account levels to group by")
}

// reportRange resolves the report period, defaulting to a single day.
func reportRange() (string, string) {
	start := reportFrom
	if start == "" {
		start = time.Now().Format("2006-01-02")
	}
	end := reportTo
	if end == "" {
		from, err := time.ParseInLocation("2006-01-02", start, time.Local)
		exitOnError(err, "invalid --from date")
		end = from.AddDate(0, 0, 1).Format("2006-01-02")
	}
	return start, end
}

func runExpense(cmd *cobra.Command, args []string) {
	manager, closer := setup()
	defer closer()

	start, end := reportRange()
	query := fmt.Sprintf(
		`SELECT ROOT(account, %d) as acc, cost(sum(position)) AS cost `+
			`WHERE date>=%s AND date<%s AND ROOT(account, 1)="Expenses" GROUP BY acc;`,
		reportLevel, start, end)

	result, err := manager.RunQuery(query)
	exitOnError(err, "failed to fetch expenses")

	printReport(fmt.Sprintf("Expenditures between %s - %s", start, end), result)
}

func printReport(title string, result *ledger.QueryResult) {
	fmt.Println(title)
	printResult([]string{"Account", "Position"}, result.Rows)
}
