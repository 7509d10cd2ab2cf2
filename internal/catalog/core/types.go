// Package core holds the record type and store contract shared by the
// workspace catalog and its persistence drivers.
package core

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Driver identifies a catalog persistence backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Record is one stored document, keyed by workspace name.
type Record struct {
	Name      string    `json:"name"`
	Revision  string    `json:"revision"`
	Checksum  string    `json:"checksum"`
	Payload   []byte    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists the latest exported document per workspace.
type Store interface {
	// Put inserts or replaces the record for rec.Name and assigns a new revision.
	Put(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, name string) (Record, bool, error)
	// List returns all records ordered by name.
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, name string) (bool, error)
	Close() error
	Driver() Driver
}

// ErrChecksumMismatch reports a record whose checksum does not match its payload.
var ErrChecksumMismatch = errors.New("catalog: checksum does not match payload")

// Checksum returns the hex sha256 of payload.
func Checksum(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Prepare validates rec and stamps a fresh revision and timestamp. The
// payload must be a JSON document; a preset checksum must match it.
func Prepare(rec Record, now time.Time) (Record, error) {
	if rec.Name == "" {
		return Record{}, fmt.Errorf("catalog: record name required")
	}
	if len(bytes.TrimSpace(rec.Payload)) == 0 || !json.Valid(rec.Payload) {
		return Record{}, fmt.Errorf("catalog: record %s payload is not a JSON document", rec.Name)
	}
	sum := Checksum(rec.Payload)
	if rec.Checksum != "" && rec.Checksum != sum {
		return Record{}, fmt.Errorf("record %s: %w", rec.Name, ErrChecksumMismatch)
	}
	return Record{
		Name:      rec.Name,
		Revision:  uuid.NewString(),
		Checksum:  sum,
		Payload:   bytes.Clone(rec.Payload),
		UpdatedAt: now.UTC(),
	}, nil
}

// Clone returns a copy of rec that shares no memory with it.
func Clone(rec Record) Record {
	rec.Payload = bytes.Clone(rec.Payload)
	return rec
}
