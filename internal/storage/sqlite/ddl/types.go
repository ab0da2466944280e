// Package ddl renders SQLite tables for export.
package ddl

import gddl "ppetl/internal/ddl"

// Types maps logical types to SQLite affinities. Booleans are stored as 0/1
// and timestamps as text.
var Types = gddl.TypeMap{
	Integer:   "INTEGER",
	Real:      "REAL",
	Boolean:   "INTEGER",
	Timestamp: "TEXT",
	Text:      "TEXT",
}

// MapType maps a logical type to a SQLite column type.
func MapType(kind string) string { return Types.Map(kind) }
