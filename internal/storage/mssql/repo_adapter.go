package mssql

import (
	"context"
	"fmt"

	"ppetl/internal/ddl"
	"ppetl/internal/storage"
	msddl "ppetl/internal/storage/mssql/ddl"
)

// newRepository is replaced in tests to avoid a live server.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:     cfg.DSN,
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mssql",
		func(ctx context.Context, repo storage.Repository, table string, cols []ddl.Column) error {
			td, err := ddl.Infer(table, cols, msddl.MapType)
			if err != nil {
				return fmt.Errorf("mssql: table %s: %w", table, err)
			}
			if err := msddl.EnsureTable(ctx, repo, td); err != nil {
				return fmt.Errorf("mssql: create %s: %w", table, err)
			}
			return nil
		})
}

// wrappedRepo adapts *mssql.Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
