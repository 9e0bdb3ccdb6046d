// Package db owns the PostgreSQL connection pool and the schema migrations
// that run against it before the API accepts traffic.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dsjohal14/propstats/internal/libs/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultMaxConns is the pool size used when none is configured.
const DefaultMaxConns int32 = 10

const defaultConnectTimeout = 10 * time.Second

var (
	// ErrConfiguration is returned when the target or pool size is unusable.
	ErrConfiguration = config.ErrConfiguration

	// ErrConnection is returned when the store cannot be reached.
	ErrConnection = errors.New("database connection error")
)

// newPoolWithConfig is swapped in tests to avoid touching the network.
var newPoolWithConfig = pgxpool.NewWithConfig

// DB wraps the database connection pool
type DB struct {
	pool *pgxpool.Pool
}

// New opens a pool of at most maxConns connections to target and verifies
// it with a ping. The pool is closed again if verification fails.
func New(ctx context.Context, target config.ConnectionTarget, maxConns int32) (*DB, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if maxConns <= 0 {
		return nil, fmt.Errorf("%w: max connections must be positive, got %d", ErrConfiguration, maxConns)
	}

	poolCfg, err := pgxpool.ParseConfig(target.DSN())
	if err != nil {
		// the parse error may echo the DSN, password included
		return nil, fmt.Errorf("%w: invalid database connection string", ErrConfiguration)
	}
	poolCfg.MaxConns = maxConns
	if poolCfg.ConnConfig.ConnectTimeout == 0 {
		poolCfg.ConnConfig.ConnectTimeout = defaultConnectTimeout
	}

	pool, err := newPoolWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create pool for %s: %w", ErrConnection, poolCfg.ConnConfig.Host, err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: failed to ping %s: %w", ErrConnection, poolCfg.ConnConfig.Host, err)
	}

	return &DB{pool: pool}, nil
}

// CountPropositions returns the current row count of the propositions table.
func (d *DB) CountPropositions(ctx context.Context) (int64, error) {
	var n int64
	if err := d.pool.QueryRow(ctx, `SELECT COUNT(*) FROM propositions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count propositions: %w", err)
	}
	return n, nil
}

// Stat returns a snapshot of pool statistics.
func (d *DB) Stat() *pgxpool.Stat {
	return d.pool.Stat()
}

// Close closes the database connection
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying connection pool
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}
