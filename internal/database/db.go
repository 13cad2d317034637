package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bhajan-portal/internal/config"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// BaseSchemaVersion is the migration that creates the bhajans table.
// Everything after it is best-effort at startup.
const BaseSchemaVersion uint = 1

//go:embed migrations/*.sql
var migrationFS embed.FS

// DB wraps the sql.DB connection with additional functionality
type DB struct {
	*sql.DB
	log zerolog.Logger
}

// New opens the SQLite file, creating its directory if needed
func New(cfg *config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	wrapper := &DB{
		DB:  db,
		log: log.With().Str("component", "database").Logger(),
	}

	wrapper.log.Info().
		Str("path", cfg.Path).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Database connection established")

	return wrapper, nil
}

// DSN builds the modernc.org/sqlite connection string
func DSN(cfg *config.DatabaseConfig) string {
	busy := cfg.BusyTimeout.Milliseconds()
	if busy <= 0 {
		busy = 5000
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_time_format=sqlite", cfg.Path, busy)
}

func (db *DB) newMigrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations brings the schema up to date.
//
// Creating the base table is required and its failure is returned. Upgrading
// legacy columns and the remaining versioned steps are best-effort: failures
// are logged as warnings and reported through MigrationReport.
func (db *DB) RunMigrations(ctx context.Context) (*MigrationReport, error) {
	report := &MigrationReport{}

	m, err := db.newMigrator()
	if err != nil {
		return report, err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return report, fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		db.log.Warn().Uint("version", version).Msg("Schema is marked dirty, skipping versioned migrations")
		report.Warnings = append(report.Warnings, fmt.Sprintf("schema version %d is dirty", version))
		return report, nil
	}

	if errors.Is(err, migrate.ErrNilVersion) || version < BaseSchemaVersion {
		if err := m.Migrate(BaseSchemaVersion); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return report, fmt.Errorf("failed to create base schema: %w", err)
		}
	}

	added, err := UpgradeLegacyColumns(ctx, db.DB)
	report.AddedColumns = added
	if err != nil {
		db.log.Warn().Err(err).Msg("Legacy column upgrade failed, continuing")
		report.Warnings = append(report.Warnings, err.Error())
	} else if len(added) > 0 {
		db.log.Info().Strs("columns", added).Msg("Added missing columns")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.log.Warn().Err(err).Msg("Schema migration failed, continuing")
		report.Warnings = append(report.Warnings, err.Error())
	}

	version, dirty, err = m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		db.log.Warn().Err(err).Msg("Failed to read migration version")
	}
	report.Version = version

	db.log.Info().
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("Migrations completed")

	return report, nil
}

// MigrateDown rolls back the last migration
func (db *DB) MigrateDown() error {
	db.log.Info().Msg("Rolling back last migration")

	m, err := db.newMigrator()
	if err != nil {
		return err
	}

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	db.log.Info().Msg("Migration rolled back")
	return nil
}

// HealthCheck verifies the database connection is healthy
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// MigrationReport summarizes a RunMigrations call
type MigrationReport struct {
	Version      uint
	AddedColumns []string
	Warnings     []string
}
