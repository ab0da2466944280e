// Package ddl contains MySQL-specific DDL helpers.
package ddl

import (
	"context"
	"strings"

	gddl "ppetl/internal/ddl"
)

// Dialect quotes identifiers with backticks and uses IF NOT EXISTS.
var Dialect = gddl.Dialect{
	Name:              "mysql ddl",
	QuoteIdent:        quoteIdent,
	IfNotExists:       true,
	PrimaryKeyNotNull: true,
}

// Types maps logical types to MySQL. Text is LONGTEXT since field widths
// are not known up front.
var Types = gddl.TypeMap{
	Integer:   "BIGINT",
	Real:      "DOUBLE",
	Boolean:   "BOOLEAN",
	Timestamp: "DATETIME(6)",
	Text:      "LONGTEXT",
}

// MapType maps a logical type to a MySQL column type.
func MapType(kind string) string { return Types.Map(kind) }

// BuildCreateTableSQL renders a CREATE TABLE IF NOT EXISTS statement.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.CreateTable(t)
}

// EnsureTable creates the table if it is missing.
func EnsureTable(ctx context.Context, ex gddl.Execer, def gddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return ex.Exec(ctx, sql)
}

func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}
