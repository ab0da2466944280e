// Package ddl defines a small, backend-agnostic model for SQL DDL and a
// renderer for CREATE TABLE statements parameterised by dialect.
//
// Backend packages (internal/storage/<kind>/ddl) supply the Dialect and the
// logical-to-SQL type mapping; this package owns validation and layout.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect captures the SQL differences the renderer cares about.
type Dialect struct {
	// Name prefixes error messages, e.g. "postgres ddl".
	Name string

	// QuoteIdent quotes one identifier segment. Nil emits names verbatim.
	QuoteIdent func(string) string

	// IfNotExists emits CREATE TABLE IF NOT EXISTS.
	IfNotExists bool

	// PrimaryKeyNotNull renders primary-key columns NOT NULL even when
	// Nullable is set.
	PrimaryKeyNotNull bool
}

// Generic renders names unquoted and without IF NOT EXISTS.
var Generic = Dialect{Name: "ddl"}

// BuildCreateTableSQL renders t with the Generic dialect.
func BuildCreateTableSQL(t TableDef) (string, error) {
	return Generic.CreateTable(t)
}

// CreateTable renders a CREATE TABLE statement of the form:
//
//	CREATE TABLE [IF NOT EXISTS] <fqn> (
//	  <col> <type> [NOT NULL] [DEFAULT <expr>],
//	  ...,
//	  [PRIMARY KEY (<pk-cols>)]
//	);
//
// Default is emitted as raw SQL. Primary-key columns keep definition order.
func (d Dialect) CreateTable(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", d.Name, name)
		}

		var sb strings.Builder
		sb.WriteString(d.quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable || (c.PrimaryKey && d.PrimaryKeyNotNull) {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	verb := "CREATE TABLE"
	if d.IfNotExists {
		verb += " IF NOT EXISTS"
	}
	return fmt.Sprintf("%s %s (\n  %s\n);", verb, d.QuoteFQN(fqn), strings.Join(cols, ",\n  ")), nil
}

// QuoteFQN quotes each dot-separated segment of a possibly schema-qualified
// name. Empty segments are dropped.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.quote(p))
	}
	return strings.Join(out, ".")
}

func (d Dialect) quote(id string) string {
	if d.QuoteIdent == nil {
		return id
	}
	return d.QuoteIdent(id)
}
