package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"taskboard/migrations"

	"github.com/amacneil/dbmate/v2/pkg/dbmate"
	_ "github.com/amacneil/dbmate/v2/pkg/driver/postgres"
)

// migrator builds a dbmate instance reading the embedded migrations.
func (p *PostgresConnectionPool) migrator() *dbmate.DB {
	m := dbmate.New(p.primaryURL)
	m.FS = migrations.FS
	m.MigrationsDir = []string{"."}
	m.AutoDumpSchema = false
	return m
}

// MigrateUp implements db.MigrationManager.
//
// dbmate has no context support; ctx is only used for logging.
func (p *PostgresConnectionPool) MigrateUp(ctx context.Context) error {
	if err := p.migrator().Migrate(); err != nil {
		return fmt.Errorf("postgres: migrate up: %w", err)
	}
	slog.InfoContext(ctx, "postgres migrations applied")
	return nil
}

// MigrateDown implements db.MigrationManager. It rolls back the latest migration only.
func (p *PostgresConnectionPool) MigrateDown(ctx context.Context) error {
	if err := p.migrator().Rollback(); err != nil {
		return fmt.Errorf("postgres: migrate down: %w", err)
	}
	slog.InfoContext(ctx, "postgres migration rolled back")
	return nil
}
