package ingest

import (
	"context"

	"ppetl/internal/rowset"
)

// Table names shared by both readers.
const (
	tProjectSummary        = "PROJECT_SUMMARY"
	tException             = "EXCEPTIONN"
	tWorkPattern           = "WORK_PATTERN"
	tWorkPatternAssignment = "WORK_PATTERN_ASSIGNMENT"
	tExceptionAssignment   = "EXCEPTION_ASSIGNMENT"
	tTimeEntry             = "TIME_ENTRY"
	tCalendar              = "CALENDAR"
	tPermanentResource     = "PERMANENT_RESOURCE"
	tConsumableResource    = "CONSUMABLE_RESOURCE"
	tBar                   = "BAR"
	tExpandedTask          = "EXPANDED_TASK"
	tTask                  = "TASK"
	tMilestone             = "MILESTONE"
	tLink                  = "LINK"
	tAllocation            = "PERMANENT_SCHEDUL_ALLOCATION"
	tSkill                 = "PERM_RESOURCE_SKILL"
)

// AssembleFile builds a Dataset from flat-file tables.
func AssembleFile(t *rowset.Tables) *Dataset {
	bars := rowset.Join(t.Get(tBar), "EXPANDED_TASK", t.Get(tExpandedTask), "EXPANDED_TASKID")
	bars = rowset.FilterNotNull(bars, "STARV")

	assignments := rowset.Join(t.Get(tAllocation), "ALLOCATIOP_OF", t.Get(tSkill), "PERM_RESOURCE_SKILLID")

	return &Dataset{
		ProjectSummary: t.Get(tProjectSummary),
		Exceptions:     t.Get(tException),
		WorkPatterns:   t.Get(tWorkPattern),
		// The file format carries no work pattern assignments that are
		// understood yet.
		WorkPatternAssignments: rowset.Set{Table: tWorkPatternAssignment},
		ExceptionAssignments:   t.Get(tExceptionAssignment),
		TimeEntries:            t.Get(tTimeEntry),
		Calendars:              rowset.Sort(t.Get(tCalendar), "CALENDARID"),
		PermanentResources:     rowset.Sort(t.Get(tPermanentResource), "PERMANENT_RESOURCEID"),
		ConsumableResources:    rowset.Sort(t.Get(tConsumableResource), "CONSUMABLE_RESOURCEID"),
		Bars:                   rowset.Sort(bars, "NATURAL_ORDER"),
		Tasks:                  rowset.Sort(t.Get(tTask), "WBT", "NATURAO_ORDER"),
		Milestones:             t.Get(tMilestone),
		Links:                  rowset.Sort(t.Get(tLink), "LINKID"),
		Assignments:            rowset.Sort(assignments, "PERMANENT_SCHEDUL_ALLOCATIONID"),
	}
}

// Querier runs one query and names the resulting set. *sqlite.DB
// implements it.
type Querier interface {
	Query(ctx context.Context, table, query string, args ...any) (rowset.Set, error)
}

// query is one entity read from the database. Scoped queries take the
// project id as their only parameter.
type query struct {
	table  string
	sql    string
	scoped bool
	dst    func(*Dataset) *rowset.Set
}

// The aliases rename database columns to the names the flat-file layouts
// use, so builders see one naming scheme.
var databaseQueries = []query{
	{tProjectSummary,
		"select duration as durationhours, project_start as staru, project_end as ene, * from project_summary where projid=?",
		true, func(d *Dataset) *rowset.Set { return &d.ProjectSummary }},
	{tException,
		"select * from exceptionn",
		false, func(d *Dataset) *rowset.Set { return &d.Exceptions }},
	{tWorkPattern,
		"select id as work_patternid, name as namn, * from work_pattern",
		false, func(d *Dataset) *rowset.Set { return &d.WorkPatterns }},
	{tCalendar,
		"select id as calendarid, name as namk, * from calendar where projid=? order by id",
		true, func(d *Dataset) *rowset.Set { return &d.Calendars }},
	{tPermanentResource,
		"select id as permanent_resourceid, name as nase, calendar as calendav, * from permanent_resource where projid=? order by id",
		true, func(d *Dataset) *rowset.Set { return &d.PermanentResources }},
	{tConsumableResource,
		"select id as consumable_resourceid, name as nase, calendar as calendav, * from consumable_resource where projid=? order by id",
		true, func(d *Dataset) *rowset.Set { return &d.ConsumableResources }},
	{tBar,
		"select bar.id as barid, calendar as calendau, bar_start as starv, bar_finish as enf, bar.name as namh, bar, wbn_code from bar inner join expanded_task on bar.expanded_task = expanded_task.id where bar.projid=? and bar_start !='' order by bar.natural_order",
		true, func(d *Dataset) *rowset.Set { return &d.Bars }},
	{tTask,
		"select id as taskid, given_duration as given_durationhours, actual_duration as actual_durationhours, overall_percent_complete as overall_percenv_complete, name as nare, calendar as calendau, linkable_start as starz, linkable_finish as enj, * from task where projid=? order by wbs, natural_order",
		true, func(d *Dataset) *rowset.Set { return &d.Tasks }},
	{tMilestone,
		"select id as milestoneid, name as nare, calendar as calendau, * from milestone where projid=?",
		true, func(d *Dataset) *rowset.Set { return &d.Milestones }},
	{tLink,
		"select start_lag_time as start_lag_timehours, end_lag_time as end_lag_timehours, link_kind as typi, * from link where projid=? order by id",
		true, func(d *Dataset) *rowset.Set { return &d.Links }},
	{tAllocation,
		"select allocated_to as allocatee_to, player, percent_complete, effort as efforw, permanent_schedul_allocation.id as permanent_schedul_allocationid, linkable_start as starz, linkable_finish as enj, given_allocation, delay as delaahours from permanent_schedul_allocation inner join perm_resource_skill on permanent_schedul_allocation.allocation_of = perm_resource_skill.id where permanent_schedul_allocation.projid=? order by permanent_schedul_allocation.id",
		true, func(d *Dataset) *rowset.Set { return &d.Assignments }},
}

// AssembleDatabase builds a Dataset from a project database, scoping
// per-project tables to projectID. The first failing query aborts the
// assembly and is returned as is (a *sqlite.QueryError for *sqlite.DB).
func AssembleDatabase(ctx context.Context, q Querier, projectID int64) (*Dataset, error) {
	ds := &Dataset{
		WorkPatternAssignments: rowset.Set{Table: tWorkPatternAssignment},
		ExceptionAssignments:   rowset.Set{Table: tExceptionAssignment},
		TimeEntries:            rowset.Set{Table: tTimeEntry},
	}
	for _, dq := range databaseQueries {
		var args []any
		if dq.scoped {
			args = append(args, projectID)
		}
		set, err := q.Query(ctx, dq.table, dq.sql, args...)
		if err != nil {
			return nil, err
		}
		*dq.dst(ds) = set
	}
	return ds, nil
}
