package export

import (
	"strconv"
	"strings"

	"ppetl/internal/ddl"
	"ppetl/internal/ingest"
	"ppetl/internal/row"
)

// plan is one entity laid out as a relational table.
type plan struct {
	entity  string
	table   string
	columns []ddl.Column
	rows    [][]any
}

func (p plan) names() []string {
	out := make([]string, len(p.columns))
	for i, c := range p.columns {
		out[i] = c.Name
	}
	return out
}

// planTable lays out e as table <prefix><lower(table)>. Columns are the
// union of row columns in first-seen order. A column's type is the kind all
// its non-null values share; integers mixed with reals become real, any
// other mix (or no value at all) becomes text.
func planTable(prefix string, e ingest.Entity) plan {
	var (
		order []string
		index = map[string]int{}
		kinds []row.Kind
	)
	for _, r := range e.Set.Rows {
		for i := 0; i < r.Len(); i++ {
			c := r.At(i)
			at, ok := index[c.Name]
			if !ok {
				at = len(order)
				index[c.Name] = at
				order = append(order, c.Name)
				kinds = append(kinds, row.KindNull)
			}
			kinds[at] = unify(kinds[at], c.Value.Kind())
		}
	}

	p := plan{
		entity:  e.Name,
		table:   prefix + Sanitize(e.Set.Table),
		columns: make([]ddl.Column, len(order)),
	}
	used := make(map[string]bool, len(order))
	for i, name := range order {
		k := kinds[i]
		if k == row.KindNull || k == mixed {
			k = row.KindText
		}
		p.columns[i] = ddl.Column{Name: unique(Sanitize(name), used), Type: k.String()}
	}

	p.rows = make([][]any, len(e.Set.Rows))
	for ri, r := range e.Set.Rows {
		vals := make([]any, len(order))
		for ci, name := range order {
			vals[ci] = cell(r.Value(name), kinds[ci])
		}
		p.rows[ri] = vals
	}
	return p
}

// mixed marks a column whose values disagree on kind.
const mixed = row.Kind(255)

func unify(have, next row.Kind) row.Kind {
	switch {
	case next == row.KindNull || have == next:
		return have
	case have == row.KindNull:
		return next
	case (have == row.KindInt && next == row.KindReal) || (have == row.KindReal && next == row.KindInt):
		return row.KindReal
	default:
		return mixed
	}
}

// cell converts v for a column of kind k.
func cell(v row.Value, k row.Kind) any {
	if v.IsNull() {
		return nil
	}
	switch k {
	case row.KindReal:
		if f, ok := v.AsReal(); ok {
			return f
		}
	case mixed, row.KindText, row.KindNull:
		return v.String()
	}
	return v.Any()
}

// Sanitize lower-cases name and replaces every character outside
// [a-z0-9_] with '_'. A leading digit or an empty result gets a "c_" prefix.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		s = "c_" + s
	}
	return s
}

func unique(name string, used map[string]bool) string {
	out := name
	for n := 2; used[out]; n++ {
		out = name + "_" + strconv.Itoa(n)
	}
	used[out] = true
	return out
}
