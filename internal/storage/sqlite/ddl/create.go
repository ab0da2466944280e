package ddl

import (
	"context"
	"strings"

	gddl "ppetl/internal/ddl"
)

// Dialect renders double-quoted identifiers and CREATE TABLE IF NOT EXISTS.
var Dialect = gddl.Dialect{
	Name:        "sqlite ddl",
	QuoteIdent:  quoteIdent,
	IfNotExists: true,
}

// BuildCreateTableSQL returns a SQLite CREATE TABLE IF NOT EXISTS statement
// for t. Dotted names ("main.events") are quoted segment by segment.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.CreateTable(t)
}

// EnsureTable creates the table if it does not exist.
func EnsureTable(ctx context.Context, ex gddl.Execer, def gddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return ex.Exec(ctx, sql)
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
