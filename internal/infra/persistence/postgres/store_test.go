package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"statcore/internal/catalog/core"
	"statcore/internal/infra/persistence/postgres/testutil"
)

func openStub(t *testing.T) (*Store, *testutil.StubConn, *sql.DB) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(driverName, _ string) (*sql.DB, error) {
		if driverName != "pgx" {
			t.Fatalf("unexpected driver %s", driverName)
		}
		return db, nil
	})
	t.Cleanup(restore)
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, conn, db
}

func TestNewStoreCreatesTable(t *testing.T) {
	store, conn, _ := openStub(t)
	if store.Driver() != core.DriverPostgres {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
	if len(conn.Execs) == 0 || !strings.Contains(conn.Execs[0], "CREATE TABLE IF NOT EXISTS workspaces") {
		t.Fatalf("expected workspaces DDL, got %v", conn.Execs)
	}
	if !strings.Contains(workspacesDDL, "payload JSON NOT NULL") {
		t.Fatalf("payload must keep the exact document text")
	}
}

func TestPutPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store, conn, db := openStub(t)
	rec, err := store.Put(ctx, core.Record{Name: "ws", Payload: []byte(`{"v": 1}`)})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, core.Record{Name: "ws", Payload: []byte(`{"v": 2}`)}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rows := conn.Rows("workspaces")
	if len(rows) != 1 || rows[0]["payload"] != `{"v": 2}` {
		t.Fatalf("unexpected rows %v", rows)
	}
	if conn.Commits != 2 {
		t.Fatalf("expected two commits, got %d", conn.Commits)
	}

	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()
	reloaded, err := NewStore(ctx, "postgres://example/statcore")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, ok, err := reloaded.Get(ctx, "ws")
	if err != nil || !ok {
		t.Fatalf("get: %v %v", ok, err)
	}
	if string(got.Payload) != `{"v": 2}` || got.Revision == rec.Revision || got.Checksum != core.Checksum([]byte(`{"v": 2}`)) {
		t.Fatalf("unexpected reloaded record %+v", got)
	}
}

func TestPutFailuresLeaveCacheUntouched(t *testing.T) {
	ctx := context.Background()
	store, conn, _ := openStub(t)

	conn.FailBegin = true
	if _, err := store.Put(ctx, core.Record{Name: "ws", Payload: []byte(`{}`)}); err == nil {
		t.Fatalf("expected begin failure")
	}
	conn.FailBegin = false

	conn.FailExec["INSERT"] = true
	if _, err := store.Put(ctx, core.Record{Name: "ws", Payload: []byte(`{}`)}); err == nil || !strings.Contains(err.Error(), "upsert ws") {
		t.Fatalf("expected upsert failure, got %v", err)
	}
	if conn.Rollbacks == 0 {
		t.Fatalf("expected rollback after failed upsert")
	}
	conn.FailExec["INSERT"] = false

	conn.FailCommit = true
	if _, err := store.Put(ctx, core.Record{Name: "ws", Payload: []byte(`{}`)}); err == nil {
		t.Fatalf("expected commit failure")
	}
	if _, ok, _ := store.Get(ctx, "ws"); ok {
		t.Fatalf("failed writes must not reach the cache")
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store, conn, _ := openStub(t)
	if _, err := store.Put(ctx, core.Record{Name: "ws", Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ok, err := store.Delete(ctx, "ws"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "ws"); err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
	conn.FailExec["DELETE"] = true
	if _, err := store.Delete(ctx, "ws"); err == nil {
		t.Fatalf("expected delete failure")
	}
}

func TestNewStoreErrors(t *testing.T) {
	ctx := context.Background()
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return nil, errors.New("boom") })
	if _, err := NewStore(ctx, ""); err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open error, got %v", err)
	}
	restore()

	cases := map[string]func(*testutil.StubConn){
		"ping postgres":           func(c *testutil.StubConn) { c.FailPing = true },
		"ensure workspaces table": func(c *testutil.StubConn) { c.FailExec["CREATE"] = true },
		"select workspaces":       func(c *testutil.StubConn) { c.FailQuery = true },
		"iterate workspaces":      func(c *testutil.StubConn) { c.RowsErr = errors.New("rows") },
	}
	for want, setup := range cases {
		db, conn := testutil.NewStubDB()
		setup(conn)
		restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
		_, err := NewStore(ctx, "")
		restore()
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q error, got %v", want, err)
		}
	}
}
