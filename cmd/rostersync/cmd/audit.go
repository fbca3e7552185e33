package cmd

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit <term>",
	Short: "Show the commit history for a term",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		rs, err := client()
		if err != nil {
			return err
		}
		defer rs.Close()

		audits, err := rs.Audits(c.Context(), args[0])
		if err != nil {
			return err
		}

		if cfg.Output == "yaml" {
			data, err := yaml.Marshal(audits)
			if err != nil {
				return err
			}
			_, err = c.OutOrStdout().Write(data)
			return err
		}

		if len(audits) == 0 {
			fmt.Fprintf(c.OutOrStdout(), "no commits for %q\n", args[0])
			return nil
		}
		for _, a := range audits {
			fmt.Fprintf(c.OutOrStdout(), "%s  %s  %s  %d changes\n",
				a.At.Format("2006-01-02 15:04:05"), a.TransactionID, a.Actor, a.Stats.TotalChanges)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
