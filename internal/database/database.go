package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the connection pool surface the readiness probe needs.
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// PoolOptions tunes the pgx connection pool. Zero fields fall back to
// defaults sized for a single service instance.
type PoolOptions struct {
	MaxConns    int32
	MinConns    int32
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

func (o PoolOptions) withDefaults() PoolOptions {
	if o.MaxConns <= 0 {
		o.MaxConns = DefaultMaxConnections
	}
	if o.MinConns <= 0 {
		o.MinConns = DefaultMinConnections
	}
	if o.MaxIdleTime <= 0 {
		o.MaxIdleTime = DefaultMaxIdleTime
	}
	if o.MaxLifetime <= 0 {
		o.MaxLifetime = DefaultMaxLifetime
	}
	return o
}

// NewPool opens a PostgreSQL connection pool and verifies it with a ping
// before handing it to the stores.
func NewPool(ctx context.Context, connString string, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse database connection string: %w", err)
	}

	opts = opts.withDefaults()
	cfg.MaxConns = opts.MaxConns
	cfg.MinConns = opts.MinConns
	cfg.MaxConnIdleTime = opts.MaxIdleTime
	cfg.MaxConnLifetime = opts.MaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("Database pool ready",
		"max_conns", opts.MaxConns, "min_conns", opts.MinConns)
	return pool, nil
}
