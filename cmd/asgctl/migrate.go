package main

import (
	"github.com/spf13/cobra"

	"aistyleguide/internal/database"
)

var seedAdmin bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			return err
		}
		if seedAdmin {
			return database.Seed(db, cfg.AdminEmail, cfg.AdminPassword)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations have been applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()
		return database.Status(db)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&seedAdmin, "seed", false, "Create the admin account if none exists")
	rootCmd.AddCommand(migrateCmd, statusCmd)
}
