// Package database owns the process-wide SQLite connection pool.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	"ms-records/internal/apperr"
	"ms-records/internal/config"
	"ms-records/internal/logger"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Pool is a bounded set of connections to one SQLite file. All repository
// work goes through With so every checkout is returned.
type Pool struct {
	bun            *bun.DB
	dsn            string
	acquireTimeout time.Duration
	log            *logger.Logger
}

// Lease is one checked-out connection.
type Lease struct {
	conn *bun.Conn
	once sync.Once
	err  error
}

// Conn exposes the leased connection for queries.
func (l *Lease) Conn() bun.IDB {
	return l.conn
}

// Release returns the connection to the pool. Calling it more than once is
// harmless.
func (l *Lease) Release() error {
	l.once.Do(func() {
		l.err = l.conn.Close()
	})
	return l.err
}

// DSN builds a modernc.org/sqlite connection string with the pragmas every
// pooled connection needs to share the file.
func DSN(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + path + "?" + q.Encode()
}

// Open creates the pool, configures its bounds and checks that the file can
// be opened.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*Pool, error) {
	log.LogDatabase("CONNECT", "sqlite", fmt.Sprintf("Opening %s (max %d connections)", cfg.Path, cfg.MaxOpenConns))

	dsn := DSN(cfg.Path, cfg.BusyTimeout)
	sqldb, err := sql.Open(DriverName, dsn)
	if err != nil {
		log.Error("DATABASE", "Failed to open SQLite database: "+err.Error())
		return nil, apperr.ConnectFailed("database.open", err)
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		log.Error("DATABASE", "Failed to ping SQLite database: "+err.Error())
		return nil, apperr.ConnectFailed("database.open", err)
	}

	acquireTimeout := cfg.AcquireTimeout
	if acquireTimeout <= 0 {
		acquireTimeout = 5 * time.Second
	}

	log.Info("DATABASE", fmt.Sprintf("Connection pool ready for %s", cfg.Path))
	return &Pool{
		bun:            bun.NewDB(sqldb, sqlitedialect.New()),
		dsn:            dsn,
		acquireTimeout: acquireTimeout,
		log:            log,
	}, nil
}

// Acquire checks out a connection, waiting at most the configured acquire
// timeout. The caller must Release the lease.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	conn, err := p.bun.Conn(acquireCtx)
	if err == nil {
		return &Lease{conn: &conn}, nil
	}

	switch {
	case ctx.Err() != nil:
		return nil, apperr.Storage("database.acquire", err)
	case errors.Is(err, context.DeadlineExceeded):
		p.log.Warn("DATABASE", fmt.Sprintf("No connection available after %s", p.acquireTimeout))
		return nil, apperr.PoolExhausted("database.acquire", err)
	default:
		p.log.Error("DATABASE", "Failed to acquire connection: "+err.Error())
		return nil, apperr.ConnectFailed("database.acquire", err)
	}
}

// With runs fn on a leased connection and releases it on every exit path.
func (p *Pool) With(ctx context.Context, fn func(db bun.IDB) error) error {
	lease, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := lease.Release(); releaseErr != nil {
			p.log.Warn("DATABASE", "Failed to release connection: "+releaseErr.Error())
		}
	}()
	return fn(lease.Conn())
}

// DSN is the connection string the pool was opened with. The migration
// runner opens its own handle with it, because golang-migrate closes the
// handle it is given.
func (p *Pool) DSN() string {
	return p.dsn
}

func (p *Pool) Ping(ctx context.Context) error {
	return p.With(ctx, func(db bun.IDB) error {
		var one int
		if err := db.NewSelect().ColumnExpr("1").Scan(ctx, &one); err != nil {
			return apperr.Storage("database.ping", err)
		}
		return nil
	})
}

func (p *Pool) Stats() sql.DBStats {
	return p.bun.Stats()
}

func (p *Pool) Close() error {
	p.log.LogDatabase("CLOSE", "sqlite", "Closing connection pool")
	return p.bun.Close()
}
