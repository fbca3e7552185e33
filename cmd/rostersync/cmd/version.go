package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(c *cobra.Command, _ []string) {
		fmt.Fprintf(c.OutOrStdout(), "rostersync version %s\n", Version)
		fmt.Fprintf(c.OutOrStdout(), "commit: %s\n", Commit)
		fmt.Fprintf(c.OutOrStdout(), "built: %s\n", Date)
		fmt.Fprintf(c.OutOrStdout(), "go version: %s\n", runtime.Version())
		fmt.Fprintf(c.OutOrStdout(), "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
