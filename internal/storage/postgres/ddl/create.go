package ddl

import (
	"strings"

	gddl "ppetl/internal/ddl"
)

// Dialect quotes identifiers with double quotes, uses IF NOT EXISTS and
// always renders primary-key columns NOT NULL.
var Dialect = gddl.Dialect{
	Name:              "postgres ddl",
	QuoteIdent:        quoteIdent,
	IfNotExists:       true,
	PrimaryKeyNotNull: true,
}

// BuildCreateTableSQL returns a Postgres CREATE TABLE IF NOT EXISTS
// statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.CreateTable(t)
}

// quoteIdent quotes a single identifier segment, e.g.:
//
//	quoteIdent(`taskid`)     => `"taskid"`
//	quoteIdent(`weird"name`) => `"weird""name"`
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
