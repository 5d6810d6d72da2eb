package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/bookshelf/internal/config"
	"github.com/deppfellow/bookshelf/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "bookshelf",
	Short: "bookshelf serves a CRUD API for books",
	Long: `bookshelf exposes list, get, create, update and delete operations on
book records over HTTP. The book store is Postgres, SQLite or memory, selected
with BOOKSHELF_DATABASE.DRIVER.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// bootstrap loads the config and builds the application logger. The
// returned LoggerService must be shut down by the caller.
func bootstrap() (*config.Config, *zerolog.Logger, *logger.LoggerService, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return cfg, &log, loggerService, nil
}
