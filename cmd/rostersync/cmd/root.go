package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/campusops/rostersync"
	"github.com/campusops/rostersync/internal/config"
	"github.com/campusops/rostersync/pkg/logging"
)

var (
	configFile string
	cfg        *config.Config

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "rostersync",
	Short: "Reconcile scheduling and directory exports against the roster store",
	Long: `Rostersync imports bulk class-schedule and people-directory exports.

An import runs in two steps: "preview" projects an export file, diffs it
against the store, and saves a reviewable transaction; "commit" applies a
reviewed selection of that transaction's changes. Nothing touches the
store until you commit.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

// Execute runs the CLI.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.rostersync.yaml)")
	rootCmd.PersistentFlags().String("store", "", "store directory (default is $HOME/.rostersync/store)")
	rootCmd.PersistentFlags().String("term", "", "academic term, e.g. \"Fall 2025\"")
	rootCmd.PersistentFlags().String("actor", "", "actor recorded on commits and locks")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: table or yaml")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "errors only")

	for _, flag := range []string{"config", "store", "term", "actor", "output", "verbose", "quiet"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding %s flag: %v", flag, err))
		}
	}
}

// setup resolves configuration and logging before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	switch {
	case cfg.Quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case cfg.Verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return nil
}

// client opens the engine against the configured store. Callers own
// the returned instance and must Close it.
func client() (rostersync.Rostersync, error) {
	return rostersync.New(
		rostersync.WithStorePath(cfg.StorePath),
		rostersync.WithActor(cfg.Actor),
		rostersync.WithLogger(logging.Default()),
	)
}

// term resolves the required term argument from flags or config.
func term() (string, error) {
	if cfg.Term == "" {
		return "", fmt.Errorf("a term is required: pass --term or set ROSTERSYNC_TERM")
	}
	return cfg.Term, nil
}
