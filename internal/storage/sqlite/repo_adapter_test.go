package sqlite

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"ppetl/internal/ddl"
	"ppetl/internal/storage"
)

// execRecorder is a storage.Repository that only records statements.
type execRecorder struct{ sql []string }

func (e *execRecorder) CopyFrom(context.Context, []string, [][]any) (int64, error) { return 0, nil }
func (e *execRecorder) Exec(_ context.Context, s string) error {
	e.sql = append(e.sql, s)
	return nil
}
func (e *execRecorder) Close() {}

// TestAdapterForwardsConfig swaps the newRepository hook, so it does not run
// in parallel.
func TestAdapterForwardsConfig(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var got Config
	closed := 0
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		got = cfg
		return &Repository{cfg: cfg}, func() { closed++ }, nil
	}

	in := storage.Config{Kind: "sqlite", DSN: "file:export.db?_pragma=busy_timeout(5000)", Table: "main.pp_task", Columns: []string{"taskid", "nare"}}
	repo, err := storage.New(context.Background(), in)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if want := (Config{DSN: in.DSN, Table: in.Table, Columns: in.Columns}); !reflect.DeepEqual(got, want) {
		t.Fatalf("hook cfg = %+v, want %+v", got, want)
	}
	repo.Close()
	if closed != 1 {
		t.Fatalf("closeFn called %d times, want 1", closed)
	}
}

func TestAdapterPropagatesOpenError(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	want := errors.New("login failed")
	newRepository = func(context.Context, Config) (*Repository, func(), error) { return nil, nil, want }

	if _, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", Table: "main.pp_task"}); !errors.Is(err, want) {
		t.Fatalf("storage.New error = %v, want %v", err, want)
	}
}

func TestRegisteredTableBootstrap(t *testing.T) {
	t.Parallel()

	rec := &execRecorder{}
	cols := []ddl.Column{{Name: "taskid", Type: "integer"}, {Name: "starv", Type: "timestamp"}}
	if err := storage.EnsureTable(context.Background(), "sqlite", rec, "main.pp_task", cols); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if len(rec.sql) != 1 {
		t.Fatalf("statements = %q, want one", rec.sql)
	}
	for _, frag := range []string{`CREATE TABLE IF NOT EXISTS "main"."pp_task"`, `"taskid" INTEGER`, `"starv" TEXT`} {
		if !strings.Contains(rec.sql[0], frag) {
			t.Fatalf("statement %q lacks %q", rec.sql[0], frag)
		}
	}

	if err := storage.EnsureTable(context.Background(), "sqlite", rec, "main.pp_task", nil); err == nil {
		t.Fatal("EnsureTable without columns succeeded")
	}
}
