package testutil

import (
	"context"
	"database/sql/driver"
	"testing"
)

func TestStubDBUpsertDeleteQuery(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	if err := conn.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	insert := "INSERT INTO workspaces(name,revision) VALUES($1,$2) ON CONFLICT(name) DO UPDATE SET revision=EXCLUDED.revision"
	for _, rev := range []string{"r1", "r2"} {
		if _, err := conn.ExecContext(ctx, insert, []driver.NamedValue{{Value: "ws"}, {Value: rev}}); err != nil {
			t.Fatalf("insert %s: %v", rev, err)
		}
	}
	rows := conn.Rows("workspaces")
	if len(rows) != 1 || rows[0]["revision"] != "r2" {
		t.Fatalf("expected upserted row, got %v", rows)
	}

	q, err := conn.QueryContext(ctx, "SELECT name, revision FROM workspaces", nil)
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	dest := make([]driver.Value, 2)
	if err := q.Next(dest); err != nil || dest[0] != "ws" || dest[1] != "r2" {
		t.Fatalf("unexpected row values: %v %v", dest, err)
	}
	_ = q.Close()

	res, err := conn.ExecContext(ctx, "DELETE FROM workspaces WHERE name = $1", []driver.NamedValue{{Value: "ws"}})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		t.Fatalf("expected one deleted row, got %d", n)
	}
	res, _ = conn.ExecContext(ctx, "DELETE FROM workspaces WHERE name = $1", []driver.NamedValue{{Value: "ws"}})
	if n, _ := res.RowsAffected(); n != 0 {
		t.Fatalf("expected zero deleted rows, got %d", n)
	}
}

func TestStubDBFailureSwitches(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	conn.FailPing = true
	if err := conn.Ping(ctx); err == nil {
		t.Fatalf("expected ping failure")
	}
	conn.FailExec["INSERT"] = true
	if _, err := conn.ExecContext(ctx, "INSERT INTO t(a) VALUES($1)", []driver.NamedValue{{Value: 1}}); err == nil {
		t.Fatalf("expected insert failure")
	}
	conn.FailQuery = true
	if _, err := conn.QueryContext(ctx, "SELECT a FROM t", nil); err == nil {
		t.Fatalf("expected query failure")
	}
	if _, _, err := parseInsert("INSERT t"); err == nil {
		t.Fatalf("expected parse failure")
	}
	if _, _, err := parseDelete("DELETE FROM t"); err == nil {
		t.Fatalf("expected delete parse failure")
	}
	if _, _, err := parseSelect("SELECT a"); err == nil {
		t.Fatalf("expected select parse failure")
	}
}
