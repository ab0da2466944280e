package ddl

import (
	"context"
	"strings"
)

// ColumnDef is one rendered column. Name is unquoted; the dialect quotes it.
// Default is emitted as raw SQL.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef is a table to create. FQN may be schema-qualified.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Column is a destination column with a logical type: integer, real, text,
// boolean or timestamp.
type Column struct {
	Name string
	Type string
}

// TypeMap gives a backend's SQL type for each logical type. Text is also used
// for unknown or empty types.
type TypeMap struct {
	Integer   string
	Real      string
	Boolean   string
	Timestamp string
	Text      string
}

// Map returns the SQL type for a logical type name, ignoring case and
// surrounding space.
func (m TypeMap) Map(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case "integer":
		return m.Integer
	case "real":
		return m.Real
	case "boolean":
		return m.Boolean
	case "timestamp":
		return m.Timestamp
	default:
		return m.Text
	}
}

// Execer runs a single SQL statement. storage.Repository satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}
