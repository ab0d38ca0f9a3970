// Package dbtest opens migrated SQLite pools in a test's temp directory.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ms-records/internal/config"
	"ms-records/internal/database"
	"ms-records/internal/database/migrations"
	"ms-records/internal/logger"
)

// Config returns pool settings pointing at a fresh file under t.TempDir().
func Config(t testing.TB) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Path:           filepath.Join(t.TempDir(), "records.db"),
		MaxOpenConns:   4,
		MaxIdleConns:   4,
		MaxLifetime:    time.Minute,
		AcquireTimeout: 2 * time.Second,
		BusyTimeout:    5 * time.Second,
	}
}

// OpenPool opens an unmigrated pool and closes it when the test ends.
func OpenPool(t testing.TB, cfg config.DatabaseConfig) *database.Pool {
	t.Helper()
	pool, err := database.Open(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

// NewPool opens a pool on a fresh file and applies every migration.
func NewPool(t testing.TB) *database.Pool {
	t.Helper()
	pool := OpenPool(t, Config(t))

	runner := migrations.NewRunner(pool, migrations.DefaultOptions(), logger.Nop())
	require.NoError(t, runner.Run(context.Background()))
	require.NoError(t, runner.Close())

	return pool
}
