package main

import (
	"watchtower/internal/db"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "create or update the clusters and nodes tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		gormDB, err := db.Open(cfg.Database, logger.WithField("component", "db"))
		if err != nil {
			return err
		}
		defer db.Close(gormDB)

		return db.Migrate(gormDB, logger)
	},
}
