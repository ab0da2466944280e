// Package rowset holds named, insertion-ordered row sequences and the
// operations the readers apply to them before handing rows to a model
// builder: multi-key stable sorting, a sort-merge inner join and null
// filtering.
//
// Sets are not indexed. Every lookup is a linear or merge-style scan, which
// matches how the readers use them: each set is sorted or joined once.
package rowset

import "ppetl/internal/row"

// Set is a sequence of rows sharing one table identity.
type Set struct {
	Table string
	Rows  []row.Row
}

// Len returns the number of rows.
func (s Set) Len() int { return len(s.Rows) }

// Tables groups row sets by table name and remembers the order in which
// tables were first seen.
type Tables struct {
	order []string
	sets  map[string]*Set
}

// NewTables returns an empty Tables.
func NewTables() *Tables {
	return &Tables{sets: make(map[string]*Set)}
}

// Append adds r to the end of table's set, creating the set on first use.
func (t *Tables) Append(table string, r row.Row) {
	s, ok := t.sets[table]
	if !ok {
		s = &Set{Table: table}
		t.sets[table] = s
		t.order = append(t.order, table)
	}
	s.Rows = append(s.Rows, r)
}

// Get returns a copy of table's set. A table with no rows yields an empty
// set carrying the requested name.
func (t *Tables) Get(table string) Set {
	s, ok := t.sets[table]
	if !ok {
		return Set{Table: table}
	}
	rows := make([]row.Row, len(s.Rows))
	copy(rows, s.Rows)
	return Set{Table: table, Rows: rows}
}

// Names returns table names in first-seen order.
func (t *Tables) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Count returns the number of rows held for table.
func (t *Tables) Count(table string) int {
	if s, ok := t.sets[table]; ok {
		return len(s.Rows)
	}
	return 0
}

// FilterNotNull returns the rows of s whose column is present and not null.
func FilterNotNull(s Set, column string) Set {
	out := Set{Table: s.Table, Rows: make([]row.Row, 0, len(s.Rows))}
	for _, r := range s.Rows {
		if !r.Value(column).IsNull() {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}
