package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var backfillFlags struct {
	limit   int
	workers int
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Analyze entries that have no analysis or an outdated one",
	Long: `Backfill re-runs the analysis for stored entries that were never analyzed
or were analyzed by an older scoring pipeline, then refreshes the mood blob of
every affected identity once.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, store, err := openService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := svc.Backfill(cmd.Context(), backfillFlags.limit, backfillFlags.workers)
		slog.Info("backfill finished", "analyzed", n)
		return err
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Migrate(cmd.Context())
	},
}

func init() {
	f := backfillCmd.Flags()
	f.IntVar(&backfillFlags.limit, "limit", 1000, "Maximum number of entries to analyze")
	f.IntVar(&backfillFlags.workers, "workers", 4, "Identities processed concurrently")
}
