package ddl

import (
	"strconv"
	"strings"
	"testing"
)

func bracket(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

// TestCreateTable covers validation and layout for the generic dialect and a
// quoting dialect.
func TestCreateTable(t *testing.T) {
	t.Parallel()

	quoted := Dialect{Name: "test ddl", QuoteIdent: bracket, IfNotExists: true, PrimaryKeyNotNull: true}

	tests := []struct {
		name        string
		dialect     Dialect
		def         TableDef
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN",
			dialect:     Generic,
			def:         TableDef{FQN: " ", Columns: []ColumnDef{{Name: "id", SQLType: "INT"}}},
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns",
			dialect:     Generic,
			def:         TableDef{FQN: "t"},
			errContains: "at least one column is required",
		},
		{
			name:        "empty column name",
			dialect:     quoted,
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: " ", SQLType: "INT"}}},
			errContains: "test ddl: column with empty name",
		},
		{
			name:        "missing type",
			dialect:     Generic,
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			errContains: "missing SQLType",
		},
		{
			name:    "generic nullable and default",
			dialect: Generic,
			def: TableDef{FQN: "  s.t  ", Columns: []ColumnDef{
				{Name: " id ", SQLType: " INT ", Nullable: true},
				{Name: "flag", SQLType: "BOOLEAN", Default: "  false  "},
			}},
			wantSQL: "CREATE TABLE s.t (\n  id INT,\n  flag BOOLEAN NOT NULL DEFAULT false\n);",
		},
		{
			name:    "generic primary keys keep order",
			dialect: Generic,
			def: TableDef{FQN: "t", Columns: []ColumnDef{
				{Name: "tenant", SQLType: "INT", PrimaryKey: true},
				{Name: "id", SQLType: "INT", PrimaryKey: true},
				{Name: "payload", SQLType: "TEXT", Nullable: true},
			}},
			wantSQL: "CREATE TABLE t (\n  tenant INT NOT NULL,\n  id INT NOT NULL,\n  payload TEXT,\n  PRIMARY KEY (tenant, id)\n);",
		},
		{
			name:    "quoting dialect",
			dialect: quoted,
			def: TableDef{FQN: "dbo..pp_task", Columns: []ColumnDef{
				{Name: "TASKID", SQLType: "BIGINT", Nullable: true, PrimaryKey: true},
				{Name: "we]ird", SQLType: "TEXT", Nullable: true},
			}},
			wantSQL: "CREATE TABLE IF NOT EXISTS [dbo].[pp_task] (\n  [TASKID] BIGINT NOT NULL,\n  [we]]ird] TEXT,\n  PRIMARY KEY ([TASKID])\n);",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.dialect.CreateTable(tt.def)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("CreateTable() error = %v, want substring %q", err, tt.errContains)
				}
				if got != "" {
					t.Fatalf("CreateTable() SQL = %q on error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTable() unexpected error = %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("CreateTable() =\n%s\nwant:\n%s", got, tt.wantSQL)
			}
		})
	}
}

func TestBuildCreateTableSQLUsesGeneric(t *testing.T) {
	t.Parallel()

	def := TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id", SQLType: "INT"}}}
	got, err := BuildCreateTableSQL(def)
	if err != nil || got != "CREATE TABLE t (\n  id INT NOT NULL\n);" {
		t.Fatalf("BuildCreateTableSQL() = %q, %v", got, err)
	}
}

func TestInfer(t *testing.T) {
	t.Parallel()

	upper := func(s string) string { return strings.ToUpper(s) }

	td, err := Infer("pp_bar", []Column{{"barid", "integer"}, {"name", "text"}}, upper)
	if err != nil {
		t.Fatalf("Infer() error = %v", err)
	}
	want := []ColumnDef{
		{Name: "barid", SQLType: "INTEGER", Nullable: true},
		{Name: "name", SQLType: "TEXT", Nullable: true},
	}
	if td.FQN != "pp_bar" || len(td.Columns) != 2 || td.Columns[0] != want[0] || td.Columns[1] != want[1] {
		t.Fatalf("Infer() = %+v", td)
	}

	if _, err := Infer("", []Column{{"a", "text"}}, upper); err == nil {
		t.Fatal("Infer(no table) error = nil")
	}
	if _, err := Infer("t", nil, upper); err == nil {
		t.Fatal("Infer(no columns) error = nil")
	}
}

var benchmarkSink string

func BenchmarkCreateTableWide(b *testing.B) {
	cols := make([]ColumnDef, 0, 64)
	for i := 0; i < 64; i++ {
		cols = append(cols, ColumnDef{Name: "col_" + strconv.Itoa(i), SQLType: "TEXT", Nullable: true})
	}
	def := TableDef{FQN: "wide", Columns: cols}
	d := Dialect{Name: "bench", QuoteIdent: bracket, IfNotExists: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sql, err := d.CreateTable(def)
		if err != nil {
			b.Fatal(err)
		}
		benchmarkSink = sql
	}
}
