// Package memory keeps catalog records in process memory. The SQL drivers
// embed it as their read cache and hydrate it from their tables on open.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"statcore/internal/catalog/core"
)

var _ core.Store = (*Store)(nil)

// Store is a mutex-guarded map of records keyed by workspace name.
type Store struct {
	mu      sync.RWMutex
	records map[string]core.Record
	now     func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]core.Record), now: time.Now}
}

// Driver returns the memory driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Prepare stamps rec with the store clock.
func (s *Store) Prepare(rec core.Record) (core.Record, error) {
	return core.Prepare(rec, s.now())
}

// Put replaces the record for rec.Name with a freshly stamped copy.
func (s *Store) Put(ctx context.Context, rec core.Record) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return core.Record{}, err
	}
	prepared, err := s.Prepare(rec)
	if err != nil {
		return core.Record{}, err
	}
	s.ImportState(prepared)
	return core.Clone(prepared), nil
}

// Get returns the record stored under name.
func (s *Store) Get(_ context.Context, name string) (core.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[name]
	if !ok {
		return core.Record{}, false, nil
	}
	return core.Clone(rec), true, nil
}

// List returns every record ordered by name.
func (s *Store) List(_ context.Context) ([]core.Record, error) {
	return s.ExportState(), nil
}

// Delete removes name and reports whether it existed.
func (s *Store) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[name]
	delete(s.records, name)
	return ok, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// ImportState stores already prepared records as-is.
func (s *Store) ImportState(records ...core.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.records[rec.Name] = core.Clone(rec)
	}
}

// ExportState returns copies of all records ordered by name.
func (s *Store) ExportState() []core.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, core.Clone(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetClock replaces the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
