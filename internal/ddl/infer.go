package ddl

import (
	"fmt"
	"strings"
)

// Infer builds a TableDef for fqn from logical columns, mapping each type
// with mapType. Every inferred column is nullable and column order is kept.
func Infer(fqn string, cols []Column, mapType func(string) string) (TableDef, error) {
	if strings.TrimSpace(fqn) == "" {
		return TableDef{}, fmt.Errorf("ddl: missing table")
	}
	if len(cols) == 0 {
		return TableDef{}, fmt.Errorf("ddl: table %s has no columns", fqn)
	}
	defs := make([]ColumnDef, 0, len(cols))
	for _, c := range cols {
		defs = append(defs, ColumnDef{
			Name:     c.Name,
			SQLType:  mapType(c.Type),
			Nullable: true,
		})
	}
	return TableDef{FQN: fqn, Columns: defs}, nil
}
