// Package postgres persists catalog records in Postgres through the pgx
// database/sql driver, mirroring the sqlite driver on top of the memory cache.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"statcore/internal/catalog/core"
	"statcore/internal/infra/persistence/memory"
)

var _ core.Store = (*Store)(nil)

const (
	defaultDriver = "pgx"
	// DefaultDSN is used when no DSN is configured.
	DefaultDSN = "postgres://localhost/statcore?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists records to Postgres and caches them in memory.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// The payload column is json rather than jsonb so the stored bytes, and with
// them the checksum, survive unchanged.
const workspacesDDL = `CREATE TABLE IF NOT EXISTS workspaces (
	name TEXT PRIMARY KEY,
	revision UUID NOT NULL,
	checksum TEXT NOT NULL,
	payload JSON NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// NewStore connects using dsn (DefaultDSN when empty), ensures the table
// exists and hydrates the cache.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, workspacesDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure workspaces table: %w", err)
	}
	records, err := loadRecords(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	mem := memory.NewStore()
	mem.ImportState(records...)
	return &Store{Store: mem, db: db}, nil
}

func loadRecords(ctx context.Context, db *sql.DB) ([]core.Record, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, revision, checksum, payload, updated_at FROM workspaces`)
	if err != nil {
		return nil, fmt.Errorf("select workspaces: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []core.Record
	for rows.Next() {
		var rec core.Record
		var updated time.Time
		if err := rows.Scan(&rec.Name, &rec.Revision, &rec.Checksum, &rec.Payload, &updated); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		rec.UpdatedAt = updated.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}
	return out, nil
}

// Driver returns the postgres driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverPostgres }

// Put upserts the record inside a transaction, then refreshes the cache.
func (s *Store) Put(ctx context.Context, rec core.Record) (core.Record, error) {
	prepared, err := s.Prepare(rec)
	if err != nil {
		return core.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Record{}, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO workspaces(name,revision,checksum,payload,updated_at) VALUES($1,$2,$3,$4,$5) ON CONFLICT(name) DO UPDATE SET revision=EXCLUDED.revision, checksum=EXCLUDED.checksum, payload=EXCLUDED.payload, updated_at=EXCLUDED.updated_at`,
		prepared.Name, prepared.Revision, prepared.Checksum, string(prepared.Payload), prepared.UpdatedAt); err != nil {
		return core.Record{}, fmt.Errorf("upsert %s: %w", prepared.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return core.Record{}, fmt.Errorf("commit: %w", err)
	}
	committed = true
	s.ImportState(prepared)
	return core.Clone(prepared), nil
}

// Delete removes the row and the cached record.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM workspaces WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	_, _ = s.Store.Delete(ctx, name)
	return n > 0, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
