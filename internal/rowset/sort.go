package rowset

import (
	"slices"

	"ppetl/internal/row"
)

// Sort returns a copy of s ordered by keys, compared left to right with
// row.Compare. The sort is stable: rows with equal keys keep their input
// order. Absent columns read as null and sort first.
func Sort(s Set, keys ...string) Set {
	rows := make([]row.Row, len(s.Rows))
	copy(rows, s.Rows)
	SortRows(rows, keys...)
	return Set{Table: s.Table, Rows: rows}
}

// SortRows stably sorts rows in place by keys.
func SortRows(rows []row.Row, keys ...string) {
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(rows, func(a, b row.Row) int {
		for _, k := range keys {
			if c := row.Compare(a.Value(k), b.Value(k)); c != 0 {
				return c
			}
		}
		return 0
	})
}
