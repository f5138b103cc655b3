// Package main is the rawsource command line client for the lookup pipeline.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gabriel/raw-source-finder/internal/config"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries what every subcommand needs once the root pre-run has loaded
// the configuration.
type cli struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
}

func newRootCmd(out io.Writer, errOut io.Writer) *cobra.Command {
	state := &cli{out: out}

	rootCmd := &cobra.Command{
		Use:   "rawsource",
		Short: "Find where a web novel's raw text is published",
		Long: `rawsource resolves an English novel title to its raw title through an index
site, then searches every known publishing site for it. Configuration is read
from the environment and an optional .env file, like the API server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				cfg.LogLevel = slog.LevelDebug
			}
			state.cfg = cfg
			state.logger = slog.New(slog.NewJSONHandler(errOut, &slog.HandlerOptions{Level: cfg.LogLevel}))
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(
		newLookupCmd(state),
		newSourcesCmd(state),
		newDetectCmd(state),
		newPurgeCacheCmd(state),
	)
	return rootCmd
}
