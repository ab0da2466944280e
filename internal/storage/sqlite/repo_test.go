package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ppetl/internal/ddl"
	"ppetl/internal/storage"
)

// newFileRepo opens a repository on a fresh database file in a temp dir.
func newFileRepo(tb testing.TB, table string, cols ...string) (*Repository, string) {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "export.db")
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: path, Table: table, Columns: cols})
	if err != nil {
		tb.Fatalf("NewRepository: %v", err)
	}
	tb.Cleanup(closeFn)
	return r, path
}

func TestNewRepositoryRejectsEmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "  "}); err == nil {
		t.Fatal("NewRepository(empty DSN) error = nil")
	}
}

// TestEnsureTableAndCopyFrom creates a table through the registered DDL
// bootstrapper and loads typed values, including nulls and timestamps.
func TestEnsureTableAndCopyFrom(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cols := []string{"taskid", "nare", "done", "cost", "starv"}
	r, path := newFileRepo(t, "pp_task", cols...)
	w := &wrappedRepo{Repository: r}

	logical := []ddl.Column{
		{Name: "taskid", Type: "integer"},
		{Name: "nare", Type: "text"},
		{Name: "done", Type: "boolean"},
		{Name: "cost", Type: "real"},
		{Name: "starv", Type: "timestamp"},
	}
	if err := storage.EnsureTable(ctx, "sqlite", w, "pp_task", logical); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	// Idempotent.
	if err := storage.EnsureTable(ctx, "sqlite", w, "pp_task", logical); err != nil {
		t.Fatalf("EnsureTable (second): %v", err)
	}

	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	rows := [][]any{
		{int64(1), "Design", true, 12.5, start},
		{int64(2), nil, false, nil, nil},
	}
	n, err := r.CopyFrom(ctx, cols, rows)
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 {
		t.Fatalf("CopyFrom inserted %d, want 2", n)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var (
		name  sql.NullString
		done  int64
		cost  sql.NullFloat64
		count int
	)
	if err := db.QueryRow(`SELECT nare, done, cost FROM pp_task WHERE taskid = 1`).Scan(&name, &done, &cost); err != nil {
		t.Fatalf("select: %v", err)
	}
	if name.String != "Design" || done != 1 || cost.Float64 != 12.5 {
		t.Fatalf("row 1 = %v %v %v", name, done, cost)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM pp_task WHERE nare IS NULL AND starv IS NULL`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("null row count = %d, want 1", count)
	}
}

func TestCopyFromValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, _ := newFileRepo(t, "t", "a", "b")
	if err := r.Exec(ctx, `CREATE TABLE t (a INTEGER, b TEXT)`); err != nil {
		t.Fatalf("Exec: %v", err)
	}

	if n, err := r.CopyFrom(ctx, []string{"a", "b"}, nil); err != nil || n != 0 {
		t.Fatalf("CopyFrom(no rows) = %d, %v", n, err)
	}
	if _, err := r.CopyFrom(ctx, nil, [][]any{{1}}); err == nil {
		t.Fatal("CopyFrom(no columns) error = nil")
	}
	_, err := r.CopyFrom(ctx, []string{"a", "b"}, [][]any{{1, "x"}, {2}})
	if err == nil || !strings.Contains(err.Error(), "row length 1") {
		t.Fatalf("CopyFrom(short row) error = %v", err)
	}

	// The failed batch was rolled back.
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM t`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("rows after rollback = %d, want 0", count)
	}
}

func TestExec(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, _ := newFileRepo(t, "t")
	if err := r.Exec(ctx, "   "); err != nil {
		t.Fatalf("Exec(blank) = %v", err)
	}
	if err := r.Exec(ctx, "NOT SQL"); err == nil || !strings.HasPrefix(err.Error(), "sqlite: exec:") {
		t.Fatalf("Exec(bad) error = %v", err)
	}
}

func TestInsertSQLQuotesIdentifiers(t *testing.T) {
	t.Parallel()

	got := insertSQL("main.pp_bar", []string{"barid", `we"ird`})
	want := `INSERT INTO "main"."pp_bar" ("barid", "we""ird") VALUES (?, ?)`
	if got != want {
		t.Fatalf("insertSQL = %q, want %q", got, want)
	}
}

func BenchmarkSqlite_CopyFrom(b *testing.B) {
	ctx := context.Background()
	r, _ := newFileRepo(b, "bench", "id", "name")
	if err := r.Exec(ctx, `CREATE TABLE bench (id INTEGER, name TEXT)`); err != nil {
		b.Fatal(err)
	}
	rows := make([][]any, 500)
	for i := range rows {
		rows[i] = []any{int64(i), "row"}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.CopyFrom(ctx, []string{"id", "name"}, rows); err != nil {
			b.Fatal(err)
		}
	}
}

func TestConnDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"out.db", "out.db?_pragma=busy_timeout(5000)&_txlock=immediate"},
		{"file:out.db?mode=rwc", "file:out.db?mode=rwc&_pragma=busy_timeout(5000)&_txlock=immediate"},
		{"out.db?_txlock=exclusive", "out.db?_txlock=exclusive&_pragma=busy_timeout(5000)"},
		{"out.db?_pragma=busy_timeout(100)", "out.db?_pragma=busy_timeout(100)&_txlock=immediate"},
		{"out.db?_pragma=busy_timeout(100)&_txlock=deferred", "out.db?_pragma=busy_timeout(100)&_txlock=deferred"},
	}
	for _, tt := range tests {
		if got := connDSN(tt.in); got != tt.want {
			t.Errorf("connDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConcurrentRepositoriesShareFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "shared.db")
	const writers = 4

	errs := make(chan error, writers)
	for w := 0; w < writers; w++ {
		go func(w int) {
			r, closeFn, err := NewRepository(ctx, Config{DSN: dsn, Table: fmt.Sprintf("t%d", w)})
			if err != nil {
				errs <- err
				return
			}
			defer closeFn()
			if err := r.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "t%d" (id INTEGER)`, w)); err != nil {
				errs <- err
				return
			}
			rows := [][]any{{int64(1)}, {int64(2)}, {int64(3)}}
			for i := 0; i < 5; i++ {
				if _, err := r.CopyFrom(ctx, []string{"id"}, rows); err != nil {
					errs <- err
					return
				}
			}
			errs <- nil
		}(w)
	}
	for w := 0; w < writers; w++ {
		if err := <-errs; err != nil {
			t.Fatalf("writer: %v", err)
		}
	}
}
