// Package storetesting provides DuckDB helpers for store tests.
package storetesting

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"flowtap/internal/store"
	"flowtap/internal/testutil"
)

const defaultTimeout = 2 * time.Second

// Open opens a DuckDB connection and verifies it responds within a short
// timeout. An empty dsn opens an in-memory database.
func Open(t testing.TB, dsn string) *sql.DB {
	t.Helper()
	ctx := testutil.Context(t, defaultTimeout)
	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		t.Fatalf("ping duckdb: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// OpenWithSchema opens an in-memory database with the store schema applied.
func OpenWithSchema(t testing.TB) *sql.DB {
	t.Helper()
	db := Open(t, "")
	if err := store.EnsureSchema(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}
