package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// VersionTable records the applied schema version.
const VersionTable = "schema_version"

// ErrMigration is returned when pending migrations cannot be applied.
var ErrMigration = errors.New("schema migration error")

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the embedded migration files, rooted at the directory
// that holds them.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate applies every pending migration on a single leased connection.
// Any failure is reported as ErrMigration; nothing distinguishes a partial
// run from a failed one.
func (d *DB) Migrate(ctx context.Context, logger zerolog.Logger) error {
	return migrateFS(ctx, d, Migrations(), logger)
}

func migrateFS(ctx context.Context, d *DB, files fs.FS, logger zerolog.Logger) error {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to acquire connection: %w", ErrMigration, err)
	}
	defer conn.Release()

	m, err := migrate.NewMigrator(ctx, conn.Conn(), VersionTable)
	if err != nil {
		return fmt.Errorf("%w: failed to create migrator: %w", ErrMigration, err)
	}

	if err := m.LoadMigrations(files); err != nil {
		return fmt.Errorf("%w: failed to load migrations: %w", ErrMigration, err)
	}

	m.OnStart = func(sequence int32, name, direction, _ string) {
		logger.Info().
			Int32("sequence", sequence).
			Str("name", name).
			Str("direction", direction).
			Msg("applying migration")
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrMigration, err)
	}

	version, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to read schema version: %w", ErrMigration, err)
	}

	logger.Info().
		Int32("version", version).
		Int("available", len(m.Migrations)).
		Msg("schema up to date")

	return nil
}
