package sqlite

import (
	"context"
	"fmt"

	"ppetl/internal/ddl"
	"ppetl/internal/storage"
	sqliteddl "ppetl/internal/storage/sqlite/ddl"
)

// newRepository is swapped by tests that only check config forwarding.
var newRepository = NewRepository

// wrappedRepo ties the cleanup returned by NewRepository to Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table, Columns: cfg.Columns})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("sqlite", ensureTable)
}

func ensureTable(ctx context.Context, repo storage.Repository, table string, cols []ddl.Column) error {
	td, err := ddl.Infer(table, cols, sqliteddl.MapType)
	if err != nil {
		return fmt.Errorf("sqlite: table %s: %w", table, err)
	}
	if err := sqliteddl.EnsureTable(ctx, repo, td); err != nil {
		return fmt.Errorf("sqlite: create %s: %w", table, err)
	}
	return nil
}
