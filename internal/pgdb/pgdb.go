// Package pgdb adapts a pgx connection pool to the executor's Database
// interface. Compiled queries return a single row with a single JSON
// column, so the adapter scans exactly one value per query.
package pgdb

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Option func(*DB)

// WithQueryTimeout bounds each query with its own deadline.
func WithQueryTimeout(d time.Duration) Option {
	return func(db *DB) { db.timeout = d }
}

// WithRetries retries transient connection failures up to n extra
// attempts. SQL errors are never retried.
func WithRetries(n int) Option {
	return func(db *DB) { db.retries = n }
}

type DB struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	retries int
}

// Connect opens a pool against dsn and verifies connectivity.
func Connect(ctx context.Context, dsn string, opts ...Option) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return Wrap(pool, opts...), nil
}

// Wrap adapts an existing pool.
func Wrap(pool *pgxpool.Pool, opts ...Option) *DB {
	db := &DB{pool: pool, timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

func (db *DB) Close() { db.pool.Close() }

// QueryJSON runs a compiled query and returns the raw JSON document
// from its single row. A query with no row yields JSON null.
func (db *DB) QueryJSON(ctx context.Context, sql string, params []any) ([]byte, error) {
	if db.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.timeout)
		defer cancel()
	}
	var raw []byte
	var err error
	for attempt := 0; ; attempt++ {
		raw, err = db.queryOnce(ctx, sql, params)
		if err == nil || attempt >= db.retries || !transient(err) {
			return raw, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
}

func (db *DB) queryOnce(ctx context.Context, sql string, params []any) ([]byte, error) {
	var raw []byte
	err := db.pool.QueryRow(ctx, sql, params...).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []byte("null"), nil
	}
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []byte("null"), nil
	}
	return raw, nil
}

// transient reports whether err looks like a connection-level failure
// worth retrying on a fresh pool connection.
func transient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exceptions.
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08"
	}
	return pgconn.SafeToRetry(err)
}
