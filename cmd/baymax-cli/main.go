// Command baymax-cli runs maintenance tasks against the baymax stores:
// schema migrations, sample data, one-off classification and aggregation,
// and a sensor simulator that publishes a session over MQTT.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"baymax-vitals/common/database"
	logpkg "baymax-vitals/common/logger"
	"baymax-vitals/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "baymax-cli",
	Short:         "Maintenance commands for baymax-vitals",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		level := cfg.Log.Level
		if logLevel != "" {
			level = logLevel
		}
		logger, err = logpkg.NewLogger(level, "console", "baymax-cli")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(simulateCmd)
}

func openDB() (*sql.DB, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
