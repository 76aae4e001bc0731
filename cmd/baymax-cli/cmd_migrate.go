package main

import (
	"fmt"

	"baymax-vitals/internal/migrations"

	"github.com/spf13/cobra"
)

var migrateDownSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := migrations.Up(db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", n)
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (default: the latest one)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := migrations.Down(db, migrateDownSteps)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s)\n", n)
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateDownSteps, "steps", 1, "number of migrations to roll back (0 = all)")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}
