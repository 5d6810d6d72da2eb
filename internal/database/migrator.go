package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"

	"github.com/deppfellow/bookshelf/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the configured store's schema up to date.
//
// Postgres runs the embedded tern migrations, versioned in schema_version.
// SQLite applies its embedded schema. Memory has nothing to migrate.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return migratePostgres(ctx, logger, cfg.Database.DSN())
	case config.DriverSQLite:
		db, err := OpenSQLite(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := EnsureSchema(ctx, db); err != nil {
			return err
		}
		logger.Info().Str("path", cfg.Database.Path).Msg("sqlite schema up to date")
		return nil
	default:
		logger.Info().Str("driver", cfg.Database.Driver).Msg("nothing to migrate")
		return nil
	}
}

func migratePostgres(ctx context.Context, logger *zerolog.Logger, dsn string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return err
	}

	if from == int32(len(m.Migrations)) {
		logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}
