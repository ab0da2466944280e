// Package ingest is the entry point of the engine. It opens a project input,
// picks the flat-file or database reader for it, assembles the per-entity
// row sets a model builder consumes and runs the hierarchy normalizer on the
// tree the builder returns.
package ingest

import (
	"strings"

	"ppetl/internal/rowset"
)

// Dataset holds one ordered row set per logical entity, already joined,
// filtered and sorted the way model builders expect.
type Dataset struct {
	ProjectSummary         rowset.Set
	Exceptions             rowset.Set
	WorkPatterns           rowset.Set
	WorkPatternAssignments rowset.Set
	ExceptionAssignments   rowset.Set
	TimeEntries            rowset.Set
	Calendars              rowset.Set
	PermanentResources     rowset.Set
	ConsumableResources    rowset.Set
	Bars                   rowset.Set
	Tasks                  rowset.Set
	Milestones             rowset.Set
	Links                  rowset.Set
	Assignments            rowset.Set
}

// Entity names a row set of a Dataset.
type Entity struct {
	Name string
	Set  rowset.Set
}

// Entities lists the row sets in a fixed order.
func (d *Dataset) Entities() []Entity {
	return []Entity{
		{"project_summary", d.ProjectSummary},
		{"exceptions", d.Exceptions},
		{"work_patterns", d.WorkPatterns},
		{"work_pattern_assignments", d.WorkPatternAssignments},
		{"exception_assignments", d.ExceptionAssignments},
		{"time_entries", d.TimeEntries},
		{"calendars", d.Calendars},
		{"permanent_resources", d.PermanentResources},
		{"consumable_resources", d.ConsumableResources},
		{"bars", d.Bars},
		{"tasks", d.Tasks},
		{"milestones", d.Milestones},
		{"links", d.Links},
		{"assignments", d.Assignments},
	}
}

// Entity returns the row set called name (an entity name such as "tasks" or
// its table name such as "TASK"), case-insensitively.
func (d *Dataset) Entity(name string) (rowset.Set, bool) {
	for _, e := range d.Entities() {
		if strings.EqualFold(e.Name, name) || strings.EqualFold(e.Set.Table, name) {
			return e.Set, true
		}
	}
	return rowset.Set{}, false
}

// Rows returns the total number of rows across all entities.
func (d *Dataset) Rows() int {
	n := 0
	for _, e := range d.Entities() {
		n += e.Set.Len()
	}
	return n
}
