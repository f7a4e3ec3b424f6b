// Package postgres persists completed simulation results and their trades.
// The workload is small and write-mostly: one JSONB result row plus a batch
// of trade rows per run, read back whole by the report tooling.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"uniswap-sim-lab/internal/storage"
)

// Pool defaults sized for the simulation server: a handful of concurrent
// runs, each touching the database once at completion.
const (
	DefaultMaxConns       = 4
	DefaultConnectTimeout = 5 * time.Second
)

// Options tunes the connection pool.
type Options struct {
	MaxConns       int32
	ConnectTimeout time.Duration
}

// Pool owns the pgx connection pool used by the result and trade stores.
type Pool struct {
	*pgxpool.Pool
}

// NewPool opens a pool with default sizing and verifies it with a ping.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	return NewPoolWithOptions(ctx, dsn, Options{})
}

// NewPoolWithOptions opens a pool with explicit sizing. Zero option values
// fall back to the defaults above.
func NewPoolWithOptions(ctx context.Context, dsn string, opts Options) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	maxConns := opts.MaxConns
	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	cfg.MaxConns = maxConns
	cfg.ConnConfig.ConnectTimeout = connectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close releases all pooled connections.
func (p *Pool) Close() {
	p.Pool.Close()
}

// unique_violation; results are write-once per simulation ID.
const pgErrUniqueViolation = "23505"

// mapError translates driver errors into the storage sentinels. Anything
// unclassified is wrapped with the failing operation.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return storage.ErrDuplicateKey
	}
	return fmt.Errorf("%s: %w", op, err)
}
