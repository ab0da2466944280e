package ddl

import (
	"context"

	gddl "ppetl/internal/ddl"
)

// EnsureTable creates the target SQL Server table if it does not already
// exist. The script is guarded by OBJECT_ID, so repeated calls are no-ops.
func EnsureTable(ctx context.Context, ex gddl.Execer, def gddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return ex.Exec(ctx, sql)
}
