package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lockReason string

var lockCmd = &cobra.Command{
	Use:   "lock <term>",
	Short: "Close a term to commits",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		rs, err := client()
		if err != nil {
			return err
		}
		defer rs.Close()

		if err := rs.LockTerm(c.Context(), args[0], lockReason); err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "locked %q\n", args[0])
		return nil
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <term>",
	Short: "Reopen a locked term",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		rs, err := client()
		if err != nil {
			return err
		}
		defer rs.Close()

		if err := rs.UnlockTerm(c.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "unlocked %q\n", args[0])
		return nil
	},
}

func init() {
	lockCmd.Flags().StringVar(&lockReason, "reason", "", "why the term is locked")
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(unlockCmd)
}
