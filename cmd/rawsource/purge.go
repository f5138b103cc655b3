package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gabriel/raw-source-finder/internal/cache"
	"github.com/gabriel/raw-source-finder/internal/database"
	"github.com/gabriel/raw-source-finder/internal/database/migrations"
	"github.com/gabriel/raw-source-finder/internal/scheduler"
)

func newPurgeCacheCmd(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-cache",
		Short: "Delete expired entries from the response cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(cmd.Context(), state.cfg.SQLitePath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.ApplyMigrations(cmd.Context(), db, migrations.FS); err != nil {
				return err
			}

			pruner := scheduler.NewPruner(cache.NewStore(db), scheduler.PrunerConfig{Now: time.Now}, state.logger)
			removed, err := pruner.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(state.out, "removed %d expired cache entries\n", removed)
			return nil
		},
	}
}
