package main

import (
	"github.com/spf13/cobra"

	"github.com/deppfellow/bookshelf/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `migrate runs the embedded tern migrations against Postgres, or applies
the embedded schema to the SQLite file. It does nothing for the memory store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, loggerService, err := bootstrap()
		if err != nil {
			return err
		}
		defer loggerService.Shutdown()

		if err := database.Migrate(cmd.Context(), log, cfg); err != nil {
			log.Error().Err(err).Msg("migration failed")
			return err
		}
		return nil
	},
}
