package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/helpdesk/internal/config"
	"github.com/ShayCichocki/helpdesk/internal/tools"
)

var initDBSkipSeed bool

var initDBCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create and seed the customer database",
	Long: `Create the SQLite customer database at the configured path, apply
schema migrations, and load sample customers and tickets. Set
tools.seed_file in the config to seed from your own YAML file, or pass
--no-seed to create an empty database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		store, err := tools.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()

		if err := store.Migrate(); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		color.Green("Database ready at %s", cfg.Database.Path)

		if initDBSkipSeed {
			return nil
		}
		if err := seedStore(store, cfg); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
		color.Green("Seed data loaded")
		return nil
	},
}

func init() {
	initDBCmd.Flags().BoolVar(&initDBSkipSeed, "no-seed", false, "Skip loading sample data")
}
