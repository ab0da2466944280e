// Package ddl renders SQL Server tables for export. CREATE TABLE is guarded
// by OBJECT_ID since SQL Server has no IF NOT EXISTS.
package ddl

import gddl "ppetl/internal/ddl"

// Types maps logical types to SQL Server. Text is Unicode so names survive
// whatever code page the input used.
var Types = gddl.TypeMap{
	Integer:   "BIGINT",
	Real:      "FLOAT",
	Boolean:   "BIT",
	Timestamp: "DATETIME2",
	Text:      "NVARCHAR(MAX)",
}

// MapType maps a logical type to a SQL Server column type.
func MapType(kind string) string { return Types.Map(kind) }
