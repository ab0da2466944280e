package ingest

import (
	"context"
	"strings"

	"ppetl/internal/hierarchy"
	"ppetl/internal/row"
)

// Builder turns a Dataset into a task tree. Model builders outside this
// module plug in here; Run normalizes whatever tree they return.
type Builder interface {
	Build(ctx context.Context, ds *Dataset) (*hierarchy.Tree, error)
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(ctx context.Context, ds *Dataset) (*hierarchy.Tree, error)

// Build calls f.
func (f BuilderFunc) Build(ctx context.Context, ds *Dataset) (*hierarchy.Tree, error) {
	return f(ctx, ds)
}

// OutlineBuilder builds a two-level outline: bars become summary nodes and
// tasks and milestones hang under the bar their BAR column names. Items
// whose bar is unknown become roots. A blank WBS code becomes the
// placeholder code.
type OutlineBuilder struct{}

// Build implements Builder.
func (OutlineBuilder) Build(ctx context.Context, ds *Dataset) (*hierarchy.Tree, error) {
	t := hierarchy.New()
	bars := make(map[int64]int, ds.Bars.Len())

	for _, r := range ds.Bars.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, ok := r.Int("BARID")
		if !ok {
			continue
		}
		if _, dup := bars[id]; dup {
			continue
		}
		bars[id] = t.Add(hierarchy.NoParent, int(id), r.Text("NAMH"), code(r), id)
	}

	attach := func(r row.Row, idCol string) {
		id, _ := r.Int(idCol)
		parent := hierarchy.NoParent
		if bar, ok := r.Int("BAR"); ok {
			if i, found := bars[bar]; found {
				parent = i
			}
		}
		t.Add(parent, int(id), r.Text("NARE"), code(r), id)
	}
	for _, r := range ds.Tasks.Rows {
		attach(r, "TASKID")
	}
	for _, r := range ds.Milestones.Rows {
		attach(r, "MILESTONEID")
	}
	return t, nil
}

func code(r row.Row) string {
	if c := strings.TrimSpace(r.Text("WBN_CODE")); c != "" {
		return c
	}
	return hierarchy.Placeholder
}
