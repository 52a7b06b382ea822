// Package pgstore is a PostgreSQL sim.Backend built on pgx. Each session
// transaction maps to one pgx transaction; each flush is sent as one batch of
// upserts.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warehouse-twin/warehouse-twin/sim"
)

//go:embed schema.sql
var schemaSQL string

// twinTables lists the simulation tables in dependency order. Reset drops
// them in reverse; the run registry survives.
var twinTables = []string{
	"warehouses", "locations", "products", "suppliers", "sensor_devices",
	"leadtime_models", "routes", "inventory_balances", "inventory_moves",
	"orders", "order_lines", "purchase_orders", "po_lines", "shipments", "observations",
}

var (
	errTxActive = errors.New("pgstore: transaction already active")
	errNoTx     = errors.New("pgstore: no active transaction")
)

// NewPool connects to the database named by the DATABASE_URL environment variable.
func NewPool(ctx context.Context) (*pgxpool.Pool, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	return Connect(ctx, connStr)
}

// Connect opens and pings a pool for connStr.
func Connect(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// Store implements sim.Backend on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

// New returns a Store using pool. Call EnsureSchema before the first Begin.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates any missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Reset drops and recreates the simulation tables.
func (s *Store) Reset(ctx context.Context) error {
	drops := make([]string, 0, len(twinTables))
	for i := len(twinTables) - 1; i >= 0; i-- {
		drops = append(drops, "DROP TABLE IF EXISTS "+twinTables[i]+" CASCADE;")
	}
	if _, err := s.pool.Exec(ctx, strings.Join(drops, "\n")); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return s.EnsureSchema(ctx)
}

func (s *Store) Begin(ctx context.Context) error {
	if s.tx != nil {
		return errTxActive
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	s.tx = tx
	return nil
}

func (s *Store) Write(ctx context.Context, rows []sim.Record) error {
	if s.tx == nil {
		return errNoTx
	}
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range rows {
		sql, args, err := upsert(r)
		if err != nil {
			return err
		}
		batch.Queue(sql, args...)
	}
	results := s.tx.SendBatch(ctx, batch)
	for i := range rows {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("upsert %s %d: %w", rows[i].Kind(), rows[i].RecordID(), err)
		}
	}
	return results.Close()
}

func (s *Store) Commit(ctx context.Context) error {
	if s.tx == nil {
		return errNoTx
	}
	err := s.tx.Commit(ctx)
	s.tx = nil
	return err
}

func (s *Store) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return errNoTx
	}
	err := s.tx.Rollback(ctx)
	s.tx = nil
	return err
}

// StartRun inserts a registry row outside any simulation transaction.
func (s *Store) StartRun(ctx context.Context, id uuid.UUID, seed int64, start time.Time, days int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO simulation_runs (id, seed, start_date, days, status) VALUES ($1, $2, $3, $4, 'running')`,
		id, seed, start, days)
	if err != nil {
		return fmt.Errorf("register run: %w", err)
	}
	return nil
}

// FinishRun records a run's final status and last committed date.
func (s *Store) FinishRun(ctx context.Context, id uuid.UUID, status string, lastCommitted *time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE simulation_runs SET status = $2, last_committed = $3, finished_at = now() WHERE id = $1`,
		id, status, lastCommitted)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Count returns the committed row count of a simulation table.
func (s *Store) Count(ctx context.Context, kind sim.Kind) (int, error) {
	table, ok := tableFor[kind]
	if !ok {
		return 0, fmt.Errorf("unknown kind %q", kind)
	}
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// HasHistory reports whether a world has been committed.
func (s *Store) HasHistory(ctx context.Context) (bool, error) {
	n, err := s.Count(ctx, sim.KindWarehouse)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
