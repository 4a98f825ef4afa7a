// Command reveriectl runs maintenance tasks against a Reverie installation:
// migrations, journal imports, and offline mood analysis.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/reverie/internal/config"
	"github.com/keyxmakerx/reverie/internal/database"
)

var (
	verboseFlag bool
	rootCmd     = &cobra.Command{
		Use:           "reveriectl",
		Short:         "Admin tool for Reverie",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verboseFlag {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
)

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log progress to stderr")

	rootCmd.AddCommand(newMigrateCmd(), newImportCmd(), newAnalyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabase loads the same configuration the server uses and opens the
// migrated database.
func openDatabase() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := database.RunMigrations(db, cfg.Database.Driver, cfg.Database.Migrations()); err != nil {
		db.Close()
		return nil, nil, err
	}
	return cfg, db, nil
}
