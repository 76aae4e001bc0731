package main

import (
	"fmt"

	"baymax-vitals/internal/repository"
	"baymax-vitals/internal/service"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <user-id>",
	Short: "Write a week of sample readings for a user with none",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		svc := service.NewReadingService(repository.NewPostgresReadingsRepository(db, logger), logger)
		readings, err := svc.Seed(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if readings == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "User %s already has readings; nothing seeded\n", args[0])
			return nil
		}
		for _, r := range readings {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  hr=%.0f  br=%.0f  mood=%.0f\n",
				r.Timestamp.Format("2006-01-02"), r.HeartRate, r.Breathing, *r.Mood)
		}
		return nil
	},
}
