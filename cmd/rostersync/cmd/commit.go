package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/campusops/rostersync/pkg/matching"
	"github.com/campusops/rostersync/pkg/transaction"
)

var (
	commitSelect []string
	commitFields []string
	commitLink   []string
	commitCreate []string
)

var commitCmd = &cobra.Command{
	Use:   "commit <transaction-id>",
	Short: "Apply a previewed transaction's changes",
	Long: `Commit applies a previewed transaction. By default every change is
applied except those blocked by an unresolved person; --select narrows
the set, --fields restricts a modify to named fields, and --link /
--create resolve ambiguous people.`,
	Example: `  rostersync commit 4f1c…
  rostersync commit 4f1c… --select 9a2b… --fields 9a2b…=courseTitle,credits
  rostersync commit 4f1c… --link 77aa…=p-1234 --create 88bb…`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		req := transaction.CommitRequest{TransactionID: args[0]}

		if len(commitSelect) > 0 || len(commitFields) > 0 {
			sel := &transaction.Selection{ChangeIDs: commitSelect}
			if len(commitFields) > 0 {
				sel.Fields = make(map[string][]string, len(commitFields))
				for _, spec := range commitFields {
					id, fields, ok := strings.Cut(spec, "=")
					if !ok {
						return fmt.Errorf("invalid --fields %q, want <change-id>=<field,field>", spec)
					}
					sel.Fields[id] = strings.Split(fields, ",")
				}
			}
			req.Selection = sel
		}

		if len(commitLink) > 0 || len(commitCreate) > 0 {
			req.Resolutions = make(map[string]matching.Resolution)
			for _, spec := range commitLink {
				id, personID, ok := strings.Cut(spec, "=")
				if !ok {
					return fmt.Errorf("invalid --link %q, want <issue-id>=<person-id>", spec)
				}
				req.Resolutions[id] = matching.Resolution{Action: matching.ActionLink, PersonID: personID}
			}
			for _, id := range commitCreate {
				req.Resolutions[id] = matching.Resolution{Action: matching.ActionCreate}
			}
		}

		rs, err := client()
		if err != nil {
			return err
		}
		defer rs.Close()

		result, err := rs.Commit(c.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.OutOrStdout(), result.Summary())
		return nil
	},
}

func init() {
	commitCmd.Flags().StringArrayVar(&commitSelect, "select", nil, "change id to apply (repeatable; default all unblocked)")
	commitCmd.Flags().StringArrayVar(&commitFields, "fields", nil, "<change-id>=<field,field> subset for a modify (repeatable)")
	commitCmd.Flags().StringArrayVar(&commitLink, "link", nil, "<issue-id>=<person-id> resolve to an existing person (repeatable)")
	commitCmd.Flags().StringArrayVar(&commitCreate, "create", nil, "issue id to resolve by creating the proposed person (repeatable)")
	rootCmd.AddCommand(commitCmd)
}
