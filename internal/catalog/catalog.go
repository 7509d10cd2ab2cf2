// Package catalog keeps the latest exported document of every workspace,
// with a revision id and checksum per save. Backends live under
// internal/infra/persistence; callers depend on Store only.
package catalog

import (
	"context"
	"fmt"
	"os"

	"statcore/internal/catalog/core"
	"statcore/internal/infra/persistence/memory"
	"statcore/internal/infra/persistence/postgres"
	"statcore/internal/infra/persistence/sqlite"
)

type (
	// Record is one stored document.
	Record = core.Record
	// Store is the catalog persistence contract.
	Store = core.Store
	// Driver identifies a backend.
	Driver = core.Driver
)

const (
	DriverMemory   = core.DriverMemory
	DriverSQLite   = core.DriverSQLite
	DriverPostgres = core.DriverPostgres
)

// ErrChecksumMismatch reports a record whose checksum does not match its payload.
var ErrChecksumMismatch = core.ErrChecksumMismatch

// Checksum returns the hex sha256 of payload.
func Checksum(payload []byte) string { return core.Checksum(payload) }

// Config selects a backend.
type Config struct {
	Driver      Driver
	SQLitePath  string
	PostgresDSN string
}

// ConfigFromEnv reads STATCORE_CATALOG_DRIVER (memory|sqlite|postgres, default
// sqlite), STATCORE_CATALOG_SQLITE_PATH and STATCORE_CATALOG_POSTGRES_DSN.
func ConfigFromEnv() Config {
	cfg := Config{
		Driver:      Driver(os.Getenv("STATCORE_CATALOG_DRIVER")),
		SQLitePath:  os.Getenv("STATCORE_CATALOG_SQLITE_PATH"),
		PostgresDSN: os.Getenv("STATCORE_CATALOG_POSTGRES_DSN"),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	return cfg
}

// Open constructs the configured store. An empty driver means sqlite.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverMemory:
		return memory.NewStore(), nil
	case "", DriverSQLite:
		s, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.Driver)
	}
}

// Save stores payload under name and returns the stamped record.
func Save(ctx context.Context, store Store, name string, payload []byte) (Record, error) {
	rec, err := store.Put(ctx, Record{Name: name, Payload: payload})
	if err != nil {
		return Record{}, fmt.Errorf("catalog save %s: %w", name, err)
	}
	return rec, nil
}

// Verify reports ErrChecksumMismatch when rec's payload no longer matches its checksum.
func Verify(rec Record) error {
	if core.Checksum(rec.Payload) != rec.Checksum {
		return fmt.Errorf("record %s revision %s: %w", rec.Name, rec.Revision, ErrChecksumMismatch)
	}
	return nil
}
