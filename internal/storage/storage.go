// Package storage owns the database connection pool shared by the
// repositories. The pool is opened once, health-checked in the background
// and closed on shutdown; requests never retry on their own.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/TooLazyToCreate/student-directory/internal/storage/migrations"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const driverName = "postgres"

type Options struct {
	MaxOpenConns   int
	MaxIdleConns   int
	ConnMaxIdle    time.Duration
	ConnectRetries uint64
	RetryBase      time.Duration
	HealthInterval time.Duration
	PingTimeout    time.Duration
}

type DB struct {
	conn    *sql.DB
	logger  *zap.Logger
	opts    Options
	healthy atomic.Bool
}

// Open dials the database and waits until it answers a ping.
func Open(ctx context.Context, logger *zap.Logger, dsn string, opts Options) (*DB, error) {
	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db, err := New(ctx, logger, conn, opts)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an already opened pool. Ping failures are retried with
// exponential backoff, at most opts.ConnectRetries times.
func New(ctx context.Context, logger *zap.Logger, conn *sql.DB, opts Options) (*DB, error) {
	if opts.RetryBase <= 0 {
		opts.RetryBase = 200 * time.Millisecond
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 5 * time.Second
	}
	if opts.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxIdle > 0 {
		conn.SetConnMaxIdleTime(opts.ConnMaxIdle)
	}

	db := &DB{conn: conn, logger: logger, opts: opts}

	attempt := 0
	backoff := retry.WithMaxRetries(opts.ConnectRetries, retry.NewExponential(opts.RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := db.ping(ctx); err != nil {
			logger.Warn("Database is not reachable yet", zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", attempt, err)
	}

	db.healthy.Store(true)
	logger.Info("Connected to database", zap.Int("attempts", attempt))
	return db, nil
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) Healthy() bool {
	return db.healthy.Load()
}

// Check pings the database once and records the result.
func (db *DB) Check(ctx context.Context) error {
	err := db.ping(ctx)
	wasHealthy := db.healthy.Swap(err == nil)
	switch {
	case err != nil && wasHealthy:
		db.logger.Error("Database became unavailable", zap.Error(err))
	case err == nil && !wasHealthy:
		db.logger.Info("Database is available again")
	}
	return err
}

// Monitor runs Check every HealthInterval until ctx is done.
func (db *DB) Monitor(ctx context.Context) {
	if db.opts.HealthInterval <= 0 {
		return
	}
	ticker := time.NewTicker(db.opts.HealthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := db.Check(ctx); err != nil && !errors.Is(err, context.Canceled) {
				db.logger.Debug("Health check failed", zap.Error(err))
			}
		}
	}
}

func (db *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(driverName); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.conn, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	db.healthy.Store(false)
	return db.conn.Close()
}

func (db *DB) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, db.opts.PingTimeout)
	defer cancel()
	return db.conn.PingContext(ctx)
}
