package storage

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"ppetl/internal/ddl"
)

// fakeRepo records statements and counts copied rows.
type fakeRepo struct {
	table  string
	copied int
	execs  []string
	closed bool
}

func (f *fakeRepo) CopyFrom(_ context.Context, _ []string, rows [][]any) (int64, error) {
	f.copied += len(rows)
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(_ context.Context, sql string) error {
	f.execs = append(f.execs, sql)
	return nil
}

func (f *fakeRepo) Close() { f.closed = true }

func TestNewUsesRegisteredFactory(t *testing.T) {
	t.Parallel()

	Register("fake-new", func(_ context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{table: cfg.Table}, nil
	})

	repo, err := New(context.Background(), Config{Kind: "fake-new", Table: "pp_bar"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := repo.(*fakeRepo).table; got != "pp_bar" {
		t.Fatalf("factory saw table %q", got)
	}
	if !slices.Contains(ListKinds(), "fake-new") {
		t.Fatalf("ListKinds() = %v, missing fake-new", ListKinds())
	}
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	Register("fake-broken", func(context.Context, Config) (Repository, error) { return nil, boom })

	if _, err := New(context.Background(), Config{Kind: "fake-broken"}); !errors.Is(err, boom) {
		t.Fatalf("factory error = %v, want %v", err, boom)
	}
	_, err := New(context.Background(), Config{Kind: "nosuchdb"})
	if err == nil || !strings.Contains(err.Error(), `unknown export kind "nosuchdb"`) {
		t.Fatalf("unknown kind error = %v", err)
	}
}

func TestRegisterReplaces(t *testing.T) {
	t.Parallel()

	first, second := &fakeRepo{table: "first"}, &fakeRepo{table: "second"}
	Register("fake-replace", func(context.Context, Config) (Repository, error) { return first, nil })
	Register("fake-replace", func(context.Context, Config) (Repository, error) { return second, nil })

	repo, err := New(context.Background(), Config{Kind: "fake-replace"})
	if err != nil {
		t.Fatal(err)
	}
	if repo != Repository(second) {
		t.Fatalf("New returned the replaced factory's repo")
	}
}

func TestListKindsIsSortedCopy(t *testing.T) {
	t.Parallel()

	Register("fake-zz", func(context.Context, Config) (Repository, error) { return &fakeRepo{}, nil })
	Register("fake-aa", func(context.Context, Config) (Repository, error) { return &fakeRepo{}, nil })

	kinds := ListKinds()
	if !slices.IsSorted(kinds) {
		t.Fatalf("ListKinds() = %v, not sorted", kinds)
	}
	kinds[0] = "mutated"
	if ListKinds()[0] == "mutated" {
		t.Fatal("ListKinds exposes the registry")
	}
}

func TestEnsureTableDispatchesByKind(t *testing.T) {
	t.Parallel()

	RegisterDDL("fake-ddl", func(ctx context.Context, repo Repository, table string, cols []ddl.Column) error {
		parts := make([]string, len(cols))
		for i, c := range cols {
			parts[i] = c.Name + " " + c.Type
		}
		return repo.Exec(ctx, "CREATE "+table+" ("+strings.Join(parts, ", ")+")")
	})

	repo := &fakeRepo{}
	cols := []ddl.Column{{Name: "taskid", Type: "integer"}, {Name: "nare", Type: "text"}}
	if err := EnsureTable(context.Background(), "fake-ddl", repo, "pp_task", cols); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if want := []string{"CREATE pp_task (taskid integer, nare text)"}; !reflect.DeepEqual(repo.execs, want) {
		t.Fatalf("execs = %q, want %q", repo.execs, want)
	}

	err := EnsureTable(context.Background(), "fake-no-ddl", repo, "t", cols)
	if err == nil || !strings.Contains(err.Error(), "fake-no-ddl") {
		t.Fatalf("EnsureTable(unknown) = %v", err)
	}
}
