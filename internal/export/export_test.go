package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"ppetl/internal/config"
	"ppetl/internal/ingest"
	"ppetl/internal/row"
	"ppetl/internal/rowset"
	"ppetl/internal/storage"
	_ "ppetl/internal/storage/sqlite"
)

func sampleDataset() *ingest.Dataset {
	task := func(id int64, name string) row.Row {
		return row.New(
			row.Column{Name: "TASKID", Value: row.Int(id)},
			row.Column{Name: "NARE", Value: row.Text(name)},
		)
	}
	return &ingest.Dataset{
		Tasks: rowset.Set{Table: "TASK", Rows: []row.Row{task(1, "Spec"), task(2, "Build"), task(3, "Test")}},
		Calendars: rowset.Set{Table: "CALENDAR", Rows: []row.Row{
			row.New(row.Column{Name: "CALENDARID", Value: row.Int(7)}, row.Column{Name: "NAMK", Value: row.Text("Standard")}),
		}},
		Links: rowset.Set{Table: "LINK"},
	}
}

func TestWriteSQLite(t *testing.T) {
	t.Parallel()

	dsn := filepath.Join(t.TempDir(), "out.db")
	reports, err := Write(context.Background(), sampleDataset(), Options{
		Job:         "test",
		Kind:        "sqlite",
		DSN:         dsn,
		TablePrefix: "pp_",
		AutoCreate:  true,
		Workers:     2,
		BatchSize:   2,
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("reports = %+v, want calendars and tasks", reports)
	}
	if reports[0].Table != "pp_calendar" || reports[0].Rows != 1 || reports[1].Table != "pp_task" || reports[1].Rows != 3 {
		t.Fatalf("reports = %+v", reports)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT taskid, nare FROM pp_task ORDER BY taskid`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			t.Fatal(err)
		}
		names = append(names, name)
	}
	if strings.Join(names, ",") != "Spec,Build,Test" {
		t.Fatalf("names = %v", names)
	}

	var n int
	if err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE name = 'pp_link'`).Scan(&n); err != nil || n != 0 {
		t.Fatalf("empty entity exported: n=%d err=%v", n, err)
	}
}

func TestWriteSQLiteConcurrentWorkers(t *testing.T) {
	t.Parallel()

	ids := func(table, col string, n int) rowset.Set {
		s := rowset.Set{Table: table}
		for i := 1; i <= n; i++ {
			s.Rows = append(s.Rows, row.New(row.Column{Name: col, Value: row.Int(int64(i))}))
		}
		return s
	}
	ds := &ingest.Dataset{
		Calendars:  ids("CALENDAR", "CALENDARID", 40),
		Tasks:      ids("TASK", "TASKID", 120),
		Bars:       ids("BAR", "BARID", 60),
		Links:      ids("LINK", "LINKID", 80),
		Milestones: ids("MILESTONE", "MILESTONEID", 30),
	}

	for _, workers := range []int{1, 2, 4} {
		workers := workers
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			t.Parallel()

			dsn := filepath.Join(t.TempDir(), "out.db")
			reports, err := Write(context.Background(), ds, Options{
				Kind:        "sqlite",
				DSN:         dsn,
				TablePrefix: "pp_",
				AutoCreate:  true,
				Workers:     workers,
				BatchSize:   7,
			})
			if err != nil {
				t.Fatalf("Write: %v", err)
			}
			if len(reports) != 5 {
				t.Fatalf("reports = %+v", reports)
			}

			db, err := sql.Open("sqlite", dsn)
			if err != nil {
				t.Fatal(err)
			}
			defer db.Close()
			for _, rep := range reports {
				var n int64
				if err := db.QueryRow(`SELECT count(*) FROM ` + rep.Table).Scan(&n); err != nil {
					t.Fatalf("count %s: %v", rep.Table, err)
				}
				if n != rep.Rows {
					t.Errorf("%s has %d rows, report says %d", rep.Table, n, rep.Rows)
				}
			}
		})
	}
}

func TestWriteEntityFilter(t *testing.T) {
	t.Parallel()

	dsn := filepath.Join(t.TempDir(), "out.db")
	reports, err := Write(context.Background(), sampleDataset(), Options{
		Kind:       "sqlite",
		DSN:        dsn,
		AutoCreate: true,
		Entities:   []string{"TASK"},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(reports) != 1 || reports[0].Entity != "tasks" || reports[0].Table != "task" {
		t.Fatalf("reports = %+v", reports)
	}
}

func TestWriteRequiresKind(t *testing.T) {
	t.Parallel()

	if _, err := Write(context.Background(), sampleDataset(), Options{}); err == nil {
		t.Fatal("Write without a kind succeeded")
	}
}

type memRepo struct {
	mu     *sync.Mutex
	tables map[string]int
	table  string
	fail   bool
	closed *int
}

func (m *memRepo) CopyFrom(_ context.Context, _ []string, rows [][]any) (int64, error) {
	if m.fail {
		return 0, errors.New("disk full")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[m.table] += len(rows)
	return int64(len(rows)), nil
}

func (m *memRepo) Exec(context.Context, string) error { return nil }

func (m *memRepo) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.closed++
}

// Not parallel: swaps the package-level repository hook.
func TestWriteClosesReposAndReportsFailure(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		mu     sync.Mutex
		closed int
		tables = map[string]int{}
	)
	newRepository = func(_ context.Context, cfg storage.Config) (storage.Repository, error) {
		return &memRepo{mu: &mu, tables: tables, table: cfg.Table, fail: cfg.Table == "task", closed: &closed}, nil
	}

	_, err := Write(context.Background(), sampleDataset(), Options{Kind: "mem", Workers: 4})
	if err == nil || !strings.Contains(err.Error(), "export task") || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if closed != 2 {
		t.Fatalf("closed %d repositories, want 2", closed)
	}

	var got []string
	for k := range tables {
		got = append(got, k)
	}
	sort.Strings(got)
	if len(got) > 1 || (len(got) == 1 && got[0] != "calendar") {
		t.Fatalf("tables written = %v", got)
	}
}

func TestOptionsFrom(t *testing.T) {
	t.Parallel()

	c := config.Default()
	c.Job = "nightly"
	c.Export = config.Export{Kind: "postgres", DSN: "postgres://x", TablePrefix: "pp_", AutoCreateTable: true, Entities: []string{"tasks"}}
	c.Runtime = config.Runtime{ExportWorkers: 3, BatchSize: 100}

	o := OptionsFrom(c)
	if o.Job != "nightly" || o.Kind != "postgres" || o.DSN != "postgres://x" || o.TablePrefix != "pp_" ||
		!o.AutoCreate || len(o.Entities) != 1 || o.Workers != 3 || o.BatchSize != 100 {
		t.Fatalf("OptionsFrom = %+v", o)
	}
}
