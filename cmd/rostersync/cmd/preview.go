package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusops/rostersync/pkg/transaction"
)

var previewCmd = &cobra.Command{
	Use:   "preview <export-file>",
	Short: "Diff an export file against the store without writing",
	Long: `Preview projects a CSV or XLSX export, diffs it against the store,
and saves a reviewable transaction. The import type (schedule vs
directory) is detected from the file's column headers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		t, err := term()
		if err != nil {
			return err
		}

		rs, err := client()
		if err != nil {
			return err
		}
		defer rs.Close()

		tx, err := rs.PreviewFile(c.Context(), t, args[0])
		if err != nil {
			return err
		}
		return render(c.OutOrStdout(), tx)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <transaction-id>",
	Short: "Show a previewed transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		rs, err := client()
		if err != nil {
			return err
		}
		defer rs.Close()

		tx, err := rs.Transaction(c.Context(), args[0])
		if err != nil {
			return err
		}
		return render(c.OutOrStdout(), tx)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// summaryLine condenses a preview summary to one line.
func summaryLine(p transaction.PreviewSummary) string {
	return fmt.Sprintf("%d rows (%d skipped) | schedules +%d ~%d =%d | people +%d ~%d =%d",
		p.RowsProcessed, p.RowsSkipped,
		p.SchedulesAdded, p.SchedulesUpdated, p.SchedulesUnchanged,
		p.PeopleAdded, p.PeopleUpdated, p.PeopleUnchanged)
}
