package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"ms-records/internal/apperr"
	"ms-records/internal/database"
	"ms-records/internal/logger"
	"ms-records/internal/models"
)

//go:embed sql/*.sql
var files embed.FS

// MigrateOptions defines configuration options for migration
type MigrateOptions struct {
	// Table is the ledger of applied versions.
	Table string
	// Verbose forwards golang-migrate's per-step output to the logger.
	Verbose bool
}

// DefaultOptions returns the default migration options
func DefaultOptions() MigrateOptions {
	return MigrateOptions{
		Table: models.MigrationsTable,
	}
}

// Runner applies the embedded schema steps to the pool's database file.
type Runner struct {
	pool     *database.Pool
	options  MigrateOptions
	log      *logger.Logger
	migrator *migrate.Migrate
}

// NewRunner creates a new migration runner
func NewRunner(pool *database.Pool, opts MigrateOptions, log *logger.Logger) *Runner {
	if opts.Table == "" {
		opts.Table = models.MigrationsTable
	}
	return &Runner{
		pool:    pool,
		options: opts,
		log:     log,
	}
}

// Initialize prepares the migration system
func (r *Runner) Initialize() error {
	if r.migrator != nil {
		return nil
	}

	sqlDB, err := sql.Open(database.DriverName, r.pool.DSN())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	driver, err := sqlite.WithInstance(sqlDB, &sqlite.Config{MigrationsTable: r.options.Table})
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to create sqlite migration driver: %w", err)
	}

	source, err := iofs.New(files, "sql")
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	migrator.Log = &migrateLogger{log: r.log, verbose: r.options.Verbose}

	r.migrator = migrator
	return nil
}

// Run applies every pending step. A rerun on an up-to-date schema is a no-op.
// A ledger left dirty by an interrupted step is refused rather than forced.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Initialize(); err != nil {
		return apperr.MigrationFailed("migrations.run", err)
	}

	version, dirty, err := r.migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return apperr.MigrationFailed("migrations.run", fmt.Errorf("failed to get migration version: %w", err))
	}
	if dirty {
		return apperr.MigrationFailed("migrations.run", fmt.Errorf("schema version %d is dirty; fix it and force the version", version))
	}

	r.log.LogMigration("UP", "Applying pending schema migrations")
	if err := r.withContext(ctx, r.migrator.Up); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperr.MigrationFailed("migrations.run", fmt.Errorf("failed to run migrations: %w", err))
	}

	version, _, err = r.migrator.Version()
	if err != nil {
		return apperr.MigrationFailed("migrations.run", fmt.Errorf("failed to get migration version: %w", err))
	}
	r.log.LogMigration("UP", fmt.Sprintf("Current schema version: %d", version))
	return nil
}

// withContext lets a cancelled context stop the migrator between steps.
func (r *Runner) withContext(ctx context.Context, step func() error) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			select {
			case r.migrator.GracefulStop <- true:
			default:
			}
		case <-done:
		}
	}()
	return step()
}

// MigrateDown rolls back all migrations
func (r *Runner) MigrateDown() error {
	if err := r.Initialize(); err != nil {
		return err
	}
	if err := r.migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// MigrateTo migrates up or down to a specific version
func (r *Runner) MigrateTo(version uint) error {
	if err := r.Initialize(); err != nil {
		return err
	}
	if err := r.migrator.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}
	return nil
}

// Force sets the ledger to version and clears the dirty flag without running
// any step.
func (r *Runner) Force(version int) error {
	if err := r.Initialize(); err != nil {
		return err
	}
	if err := r.migrator.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Version reports the applied version. ok is false on an empty ledger.
func (r *Runner) Version() (version uint, dirty bool, ok bool, err error) {
	if err := r.Initialize(); err != nil {
		return 0, false, false, err
	}
	version, dirty, err = r.migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, true, nil
}

// Close frees resources associated with the migrator
func (r *Runner) Close() error {
	if r.migrator == nil {
		return nil
	}
	sourceErr, databaseErr := r.migrator.Close()
	r.migrator = nil
	if sourceErr != nil {
		return fmt.Errorf("error closing migrator source: %w", sourceErr)
	}
	if databaseErr != nil {
		return fmt.Errorf("error closing migrator database: %w", databaseErr)
	}
	return nil
}

type migrateLogger struct {
	log     *logger.Logger
	verbose bool
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.log.LogMigration("STEP", strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrateLogger) Verbose() bool {
	return l.verbose
}
