package main

import (
	"fmt"

	"baymax-vitals/internal/aggregator"
	"baymax-vitals/internal/repository"

	"github.com/spf13/cobra"
)

var aggregatePendingLimit int

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [session-id...]",
	Short: "Compute analytics for the given sessions, or for all pending ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		sessions := repository.NewPostgresSessionsRepository(db, logger)
		agg := aggregator.NewSessionAggregator(repository.NewPostgresAnalyticsRepository(db, logger), logger)

		ids := args
		if len(ids) == 0 {
			ids, err = sessions.ListUnprocessedCompleted(cmd.Context(), aggregatePendingLimit)
			if err != nil {
				return err
			}
		}

		for _, id := range ids {
			rec, err := sessions.GetSessionRecord(cmd.Context(), id)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", id, err)
				continue
			}
			outcome, err := agg.Process(cmd.Context(), id, rec)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", id, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, outcome)
		}
		return nil
	},
}

func init() {
	aggregateCmd.Flags().IntVar(&aggregatePendingLimit, "limit", 100, "maximum pending sessions to process")
}
