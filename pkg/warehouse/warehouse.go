// Package warehouse is the read-only adapter over the analytical store.
// Every operation validates its inputs, retries once on transient
// failure, and degrades to an empty result rather than failing the
// pipeline.
package warehouse

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/getlens/lens/pkg/config"
	"github.com/getlens/lens/pkg/logger"
)

const (
	MinDays  = 1
	MaxDays  = 365
	MinLimit = 1
	MaxLimit = 10000
)

// querier is the subset of pgxpool.Pool the store uses. Tests substitute
// their own implementation.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads sales, inventory, and customer data from the warehouse.
type Store struct {
	pool    *pgxpool.Pool
	db      querier
	timeout time.Duration
	logger  *slog.Logger
}

// New opens a connection pool against the warehouse.
func New(ctx context.Context, cfg config.WarehouseConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	return &Store{
		pool:    pool,
		db:      pool,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:  logger.GetLogger(),
	}, nil
}

// NewWithQuerier wraps an existing query surface. Used by tests.
func NewWithQuerier(db querier, timeout time.Duration) *Store {
	return &Store{
		db:      db,
		timeout: timeout,
		logger:  logger.GetLogger(),
	}
}

// Close releases the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// query runs sql with one retry on failure. The caller's collect function
// consumes the rows. On persistent failure query logs and reports false,
// and the caller returns its empty result.
func (s *Store) query(ctx context.Context, name, sql string, collect func(pgx.Rows) error, args ...any) bool {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		rows, err := s.db.Query(attemptCtx, sql, args...)
		if err == nil {
			err = collect(rows)
			rows.Close()
		}
		cancel()

		if err == nil {
			return true
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	s.logger.Warn("warehouse query failed, returning empty result", "query", name, "error", lastErr)
	return false
}
