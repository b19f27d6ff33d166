package cli

import (
	"github.com/spf13/cobra"

	"github.com/tkrause/symsync/internal/config"
	"github.com/tkrause/symsync/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := config.LoadAndValidate(configPath)
		if err != nil {
			return err
		}
		return store.MigrateUp(cfg.Database, logger)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent schema migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := config.LoadAndValidate(configPath)
		if err != nil {
			return err
		}
		return store.MigrateDown(cfg.Database, logger)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}
