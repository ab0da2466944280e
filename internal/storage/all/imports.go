// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their factories and DDL bootstrappers with the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "postgres" (ppetl/internal/storage/postgres)
//   - "mssql"    (ppetl/internal/storage/mssql)
//   - "mysql"    (ppetl/internal/storage/mysql)
//   - "sqlite"   (ppetl/internal/storage/sqlite)
//
// Typical usage (in cmd/ppetl/main.go):
//
//	import _ "ppetl/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: "postgres", DSN: dsn, Table: "pp_task", Columns: cols})
//	if err != nil {
//	    // handle error
//	}
//	defer repo.Close()
//	if err := storage.EnsureTable(ctx, "postgres", repo, "pp_task", logicalCols); err != nil {
//	    // handle DDL error
//	}
//
// A binary that supports only a subset of backends can blank-import the
// backend packages it needs instead of this one.
package all

import (
	_ "ppetl/internal/storage/mssql"
	_ "ppetl/internal/storage/mysql"
	_ "ppetl/internal/storage/postgres"
	_ "ppetl/internal/storage/sqlite"
)
