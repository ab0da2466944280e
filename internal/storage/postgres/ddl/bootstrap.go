package ddl

import (
	"context"

	gddl "ppetl/internal/ddl"
)

// EnsureTable creates the target table if it does not exist. It is
// idempotent.
func EnsureTable(ctx context.Context, ex gddl.Execer, def gddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return ex.Exec(ctx, sql)
}
