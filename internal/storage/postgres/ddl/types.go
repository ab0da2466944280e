// Package ddl renders Postgres tables for export.
package ddl

import gddl "ppetl/internal/ddl"

// Types maps logical types to Postgres. Timestamps carry no zone; inputs
// are local project times.
var Types = gddl.TypeMap{
	Integer:   "BIGINT",
	Real:      "DOUBLE PRECISION",
	Boolean:   "BOOLEAN",
	Timestamp: "TIMESTAMP",
	Text:      "TEXT",
}

// MapType maps a logical type to a Postgres column type.
func MapType(kind string) string { return Types.Map(kind) }
