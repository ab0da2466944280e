package rowset

import "ppetl/internal/row"

// Join performs an inner join of left and right on leftKey = rightKey using
// sort-merge semantics. Keys are compared as integers; rows whose key is
// absent or not an integer never match.
//
// Both inputs are stably sorted by their key first (a no-op for input that is
// already sorted). A single cursor then walks right: it advances while the
// right key is below the current left key and parks on the first right row
// that is not. Consecutive left rows sharing a key therefore all match the
// row the cursor is parked on.
//
// This is not a one-to-many join: when several right rows share a key only
// the first of them in sort order is ever used. Callers rely on the resulting
// row counts, so the behaviour is kept as is.
//
// A composite row copies every left column, then every right column under its
// own name, or as "<right.Table>.<name>" when the left row already has that
// name. The result carries left's table name.
func Join(left Set, leftKey string, right Set, rightKey string) Set {
	l := Sort(left, leftKey)
	r := Sort(right, rightKey)

	out := Set{Table: left.Table}
	cursor := 0
	for _, lr := range l.Rows {
		lk, ok := lr.Int(leftKey)
		if !ok {
			continue
		}

		matched := false
		for cursor < len(r.Rows) {
			rk, ok := r.Rows[cursor].Int(rightKey)
			if !ok || rk < lk {
				cursor++
				continue
			}
			matched = rk == lk
			break
		}
		if matched {
			out.Rows = append(out.Rows, merge(lr, r.Rows[cursor], right.Table))
		}
	}
	return out
}

func merge(left, right row.Row, rightTable string) row.Row {
	cols := make([]row.Column, 0, left.Len()+right.Len())
	cols = append(cols, left.Columns()...)
	for i := 0; i < right.Len(); i++ {
		c := right.At(i)
		if left.Has(c.Name) {
			c.Name = rightTable + "." + c.Name
		}
		cols = append(cols, c)
	}
	return row.New(cols...)
}
