// Package sqlite is the relational query loader. It runs parameterized
// queries against a project database file and turns every result record into
// a row.Row, taking column names and declared types from the live result set
// rather than from a static schema. Queries may therefore alias columns
// freely.
//
// Column names are upper-cased so rows read here line up with rows read from
// the flat-file format.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ppetl/internal/row"
	"ppetl/internal/rowset"
)

// DefaultDateFormat is the time.Parse layout applied to timestamp columns
// stored as text.
const DefaultDateFormat = "2006-01-02 15:04:05"

// Options configures a connection.
type Options struct {
	// DateFormat is the layout of timestamp text in the database. Empty means
	// DefaultDateFormat. It applies to every timestamp column of the session.
	DateFormat string
}

// QueryError ties a driver failure to the query that caused it.
type QueryError struct {
	Table string
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("sqlite: query %s: %v", e.Table, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// DB is an open, read-only project database.
type DB struct {
	db         *sql.DB
	path       string
	dateFormat string
}

// Open opens the database file at path read-only and checks that it is
// reachable.
func Open(ctx context.Context, path string, opt Options) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite: path must not be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: resolve %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(abs)+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}

	df := opt.DateFormat
	if df == "" {
		df = DefaultDateFormat
	}
	return &DB{db: db, path: path, dateFormat: df}, nil
}

// Path returns the file the database was opened from.
func (d *DB) Path() string { return d.path }

// Close releases the connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Query runs query with args and returns the result as a set named table.
// Any failure is returned as a *QueryError.
func (d *DB) Query(ctx context.Context, table, query string, args ...any) (rowset.Set, error) {
	fail := func(err error) (rowset.Set, error) {
		return rowset.Set{}, &QueryError{Table: table, Query: query, Err: err}
	}

	stmt, err := d.db.PrepareContext(ctx, query)
	if err != nil {
		return fail(err)
	}
	defer closeLogged("statement", table, stmt.Close)

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return fail(err)
	}
	defer closeLogged("rows", table, rows.Close)

	types, err := rows.ColumnTypes()
	if err != nil {
		return fail(err)
	}
	names := make([]string, len(types))
	kinds := make([]row.Kind, len(types))
	for i, ct := range types {
		names[i] = strings.ToUpper(ct.Name())
		kinds[i] = kindOf(ct.DatabaseTypeName())
	}

	set := rowset.Set{Table: table}
	raw := make([]any, len(types))
	ptrs := make([]any, len(types))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fail(err)
		}
		cols := make([]row.Column, len(raw))
		for i, v := range raw {
			cols[i] = row.Column{Name: names[i], Value: d.convert(v, kinds[i])}
		}
		set.Rows = append(set.Rows, row.New(cols...))
	}
	if err := rows.Err(); err != nil {
		return fail(err)
	}
	return set, nil
}

// closeLogged runs a cleanup close. Failures are only logged so they never
// replace an error already being returned.
func closeLogged(what, table string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Printf("sqlite: close %s for %s: %v", what, table, err)
	}
}

// kindOf maps a declared SQL type to a value kind using SQLite's affinity
// rules plus boolean and date/time names. KindNull means "use whatever the
// driver returned".
func kindOf(decl string) row.Kind {
	t := strings.ToUpper(decl)
	switch {
	case t == "":
		return row.KindNull
	case strings.Contains(t, "BOOL") || t == "BIT":
		return row.KindBool
	case strings.Contains(t, "DATE") || strings.Contains(t, "TIME"):
		return row.KindTime
	case strings.Contains(t, "INT"):
		return row.KindInt
	case strings.Contains(t, "CHAR") || strings.Contains(t, "CLOB") || strings.Contains(t, "TEXT"):
		return row.KindText
	case strings.Contains(t, "REAL") || strings.Contains(t, "FLOA") || strings.Contains(t, "DOUB"),
		strings.Contains(t, "NUM") || strings.Contains(t, "DEC"):
		return row.KindReal
	}
	return row.KindNull
}
