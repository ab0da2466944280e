package ingest

import (
	"testing"

	"ppetl/internal/row"
	"ppetl/internal/rowset"
)

func TestDatasetEntities(t *testing.T) {
	t.Parallel()

	ds := &Dataset{
		Tasks: rowset.Set{Table: "TASK", Rows: []row.Row{
			row.New(row.Column{Name: "TASKID", Value: row.Int(1)}),
			row.New(row.Column{Name: "TASKID", Value: row.Int(2)}),
		}},
		Bars: rowset.Set{Table: "BAR", Rows: []row.Row{row.New()}},
	}

	es := ds.Entities()
	if len(es) != 14 || es[0].Name != "project_summary" || es[len(es)-1].Name != "assignments" {
		t.Fatalf("entities = %d, first %q last %q", len(es), es[0].Name, es[len(es)-1].Name)
	}
	if ds.Rows() != 3 {
		t.Fatalf("Rows() = %d, want 3", ds.Rows())
	}

	for _, name := range []string{"tasks", "TASKS", "task", "TASK"} {
		s, ok := ds.Entity(name)
		if !ok || s.Len() != 2 {
			t.Fatalf("Entity(%q) = %d rows, %v", name, s.Len(), ok)
		}
	}
	if _, ok := ds.Entity("nope"); ok {
		t.Fatal("Entity(nope) found a set")
	}
}
