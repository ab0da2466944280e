package storage

import (
	"context"
	"fmt"
	"sync"

	"ppetl/internal/ddl"
)

// DDLBootstrapper creates table with the given logical columns if it does not
// exist, using repo.Exec. Backends register one per kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, table string, cols []ddl.Column) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable runs the bootstrapper registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, cols []ddl.Column) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("storage: no table bootstrapper for export kind %q", kind)
	}
	return fn(ctx, repo, table, cols)
}
