package row

import (
	"fmt"
	"strings"
	"time"
)

// Column is one named value inside a Row.
type Column struct {
	Name  string
	Value Value
}

// Row is an ordered, immutable mapping from column name to Value. Names are
// case-sensitive. Construct rows with New; the zero Row has no columns.
type Row struct {
	cols  []Column
	index map[string]int
}

// New builds a Row from cols, copying the slice. A repeated name keeps the
// position of its first occurrence and the value of its last one.
func New(cols ...Column) Row {
	r := Row{
		cols:  make([]Column, 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for _, c := range cols {
		if i, ok := r.index[c.Name]; ok {
			r.cols[i].Value = c.Value
			continue
		}
		r.index[c.Name] = len(r.cols)
		r.cols = append(r.cols, c)
	}
	return r
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.cols) }

// Has reports whether the row exposes a column called name.
func (r Row) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Get returns the value stored under name.
func (r Row) Get(name string) (Value, bool) {
	i, ok := r.index[name]
	if !ok {
		return Value{}, false
	}
	return r.cols[i].Value, true
}

// Value returns the value stored under name, or null when absent.
func (r Row) Value(name string) Value {
	v, _ := r.Get(name)
	return v
}

// At returns the column at position i.
func (r Row) At(i int) Column { return r.cols[i] }

// Names returns the column names in row order.
func (r Row) Names() []string {
	out := make([]string, len(r.cols))
	for i, c := range r.cols {
		out[i] = c.Name
	}
	return out
}

// Columns returns a copy of the row's columns.
func (r Row) Columns() []Column {
	out := make([]Column, len(r.cols))
	copy(out, r.cols)
	return out
}

// Int returns the integer stored under name.
func (r Row) Int(name string) (int64, bool) { return r.Value(name).AsInt() }

// Real returns the number stored under name.
func (r Row) Real(name string) (float64, bool) { return r.Value(name).AsReal() }

// Text returns the string stored under name, or "" when absent or not text.
func (r Row) Text(name string) string {
	s, _ := r.Value(name).AsText()
	return s
}

// Bool returns the boolean stored under name.
func (r Row) Bool(name string) (bool, bool) { return r.Value(name).AsBool() }

// Time returns the timestamp stored under name.
func (r Row) Time(name string) (time.Time, bool) { return r.Value(name).AsTime() }

// String renders the row as {NAME:value, ...}.
func (r Row) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s:%s", c.Name, c.Value)
	}
	b.WriteByte('}')
	return b.String()
}
