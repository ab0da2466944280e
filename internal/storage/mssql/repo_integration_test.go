//go:build integration

package mssql

import (
	"context"
	"os"
	"testing"
	"time"

	gddl "ppetl/internal/ddl"
	msddl "ppetl/internal/storage/mssql/ddl"
)

// testDSN reads MSSQL_TEST_DSN and skips the test when it is empty.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("MSSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MSSQL_TEST_DSN not set; skipping MSSQL integration tests")
	}
	return dsn
}

// TestExportTableIntegration bootstraps an entity table the way an export
// does and bulk copies calendar rows into it.
func TestExportTableIntegration(t *testing.T) {
	dsn := testDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	const table = "dbo.pp_calendar_it"
	cols := []string{"calendarid", "namk", "starv"}
	repo, closeFn, err := NewRepository(ctx, Config{DSN: dsn, Table: table, Columns: cols})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()

	_ = repo.Exec(ctx, "IF OBJECT_ID(N'dbo.pp_calendar_it', N'U') IS NOT NULL DROP TABLE dbo.pp_calendar_it;")
	defer func() { _ = repo.Exec(context.Background(), "DROP TABLE dbo.pp_calendar_it;") }()

	def, err := gddl.Infer(table, []gddl.Column{
		{Name: "calendarid", Type: "integer"},
		{Name: "namk", Type: "text"},
		{Name: "starv", Type: "timestamp"},
	}, msddl.MapType)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := msddl.EnsureTable(ctx, repo, def); err != nil {
			t.Fatalf("EnsureTable (pass %d): %v", i+1, err)
		}
	}

	start := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	rows := [][]any{
		{int64(1), "Standard", start},
		{int64(2), "Night shift", nil},
	}
	n, err := repo.CopyFrom(ctx, cols, rows)
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != int64(len(rows)) {
		t.Fatalf("CopyFrom inserted %d, want %d", n, len(rows))
	}
}
