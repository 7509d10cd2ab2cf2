// Package sqlite persists catalog records in a single SQLite table using the
// pure-Go modernc driver. Reads are served from an embedded memory store
// hydrated on open; writes hit the table first.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"statcore/internal/catalog/core"
	"statcore/internal/infra/persistence/memory"
)

var _ core.Store = (*Store)(nil)

// DefaultPath is used when no database path is configured.
const DefaultPath = "statcore.db"

var sqlOpen = sql.Open

// Store persists records to SQLite and caches them in memory.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating if needed) the database at path and loads every record.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sqlOpen("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS workspaces (
		name TEXT PRIMARY KEY,
		revision TEXT NOT NULL,
		checksum TEXT NOT NULL,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create workspaces table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name, revision, checksum, payload, updated_at FROM workspaces`)
	if err != nil {
		return fmt.Errorf("select workspaces: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var records []core.Record
	for rows.Next() {
		var rec core.Record
		var updated string
		if err := rows.Scan(&rec.Name, &rec.Revision, &rec.Checksum, &rec.Payload, &updated); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return fmt.Errorf("decode updated_at for %s: %w", rec.Name, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate workspaces: %w", err)
	}
	s.ImportState(records...)
	return nil
}

// Driver returns the sqlite driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverSQLite }

// Put upserts the record row, then refreshes the cache.
func (s *Store) Put(ctx context.Context, rec core.Record) (core.Record, error) {
	prepared, err := s.Prepare(rec)
	if err != nil {
		return core.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO workspaces(name,revision,checksum,payload,updated_at) VALUES(?,?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET revision=excluded.revision, checksum=excluded.checksum, payload=excluded.payload, updated_at=excluded.updated_at`,
		prepared.Name, prepared.Revision, prepared.Checksum, prepared.Payload, prepared.UpdatedAt.Format(time.RFC3339Nano)); err != nil {
		return core.Record{}, fmt.Errorf("upsert %s: %w", prepared.Name, err)
	}
	s.ImportState(prepared)
	return core.Clone(prepared), nil
}

// Delete removes the row and the cached record.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM workspaces WHERE name = ?`, name)
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

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
