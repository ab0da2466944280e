package mysql

import (
	"context"
	"fmt"

	"ppetl/internal/ddl"
	"ppetl/internal/storage"
	myddl "ppetl/internal/storage/mysql/ddl"
)

// newRepository is replaced in tests to avoid a live server.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

// init registers the "mysql" backend with the factory.
func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
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

	storage.RegisterDDL("mysql",
		func(ctx context.Context, repo storage.Repository, table string, cols []ddl.Column) error {
			td, err := ddl.Infer(table, cols, myddl.MapType)
			if err != nil {
				return fmt.Errorf("mysql: table %s: %w", table, err)
			}
			if err := myddl.EnsureTable(ctx, repo, td); err != nil {
				return fmt.Errorf("mysql: create %s: %w", table, err)
			}
			return nil
		})
}

// wrappedRepo adapts *mysql.Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close closes the underlying connection pool.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
