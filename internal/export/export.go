// Package export writes the entity row sets of an ingest.Dataset to a
// relational storage backend, one table per entity.
//
// Tables are written concurrently (bounded by Options.Workers). Each table
// gets its own repository, optional DDL bootstrap and batched load.
package export

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ppetl/internal/config"
	"ppetl/internal/ingest"
	"ppetl/internal/metrics"
	"ppetl/internal/storage"
)

const defaultBatchSize = 5000

// newRepository is a test hook that points to storage.New by default.
var newRepository = storage.New

// Options controls an export run.
type Options struct {
	Job         string
	Kind        string
	DSN         string
	TablePrefix string
	AutoCreate  bool

	// Entities restricts the export to these entity or table names.
	// Empty means every non-empty entity.
	Entities []string

	Workers   int
	BatchSize int
}

// OptionsFrom maps a run configuration onto export options.
func OptionsFrom(c config.Config) Options {
	return Options{
		Job:         c.Job,
		Kind:        c.Export.Kind,
		DSN:         c.Export.DSN,
		TablePrefix: c.Export.TablePrefix,
		AutoCreate:  c.Export.AutoCreateTable,
		Entities:    c.Export.Entities,
		Workers:     c.Runtime.ExportWorkers,
		BatchSize:   c.Runtime.BatchSize,
	}
}

// TableReport describes one exported table.
type TableReport struct {
	Entity string `json:"entity"`
	Table  string `json:"table"`
	Rows   int64  `json:"rows"`
}

// Write exports ds. It returns one report per written table, in entity
// order. The first failing table cancels the others.
func Write(ctx context.Context, ds *ingest.Dataset, opt Options) ([]TableReport, error) {
	if strings.TrimSpace(opt.Kind) == "" {
		return nil, fmt.Errorf("export: storage kind is required")
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = 1
	}
	if opt.BatchSize <= 0 {
		opt.BatchSize = defaultBatchSize
	}

	var plans []plan
	for _, e := range ds.Entities() {
		if e.Set.Len() == 0 || !selected(opt.Entities, e) {
			continue
		}
		plans = append(plans, planTable(opt.TablePrefix, e))
	}

	start := time.Now()
	reports := make([]TableReport, len(plans))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range plans {
		p := plans[i]
		g.Go(func() error {
			n, err := writeTable(gctx, p, opt)
			if err != nil {
				return fmt.Errorf("export %s: %w", p.table, err)
			}
			mu.Lock()
			reports[i] = TableReport{Entity: p.entity, Table: p.table, Rows: n}
			mu.Unlock()
			metrics.RecordExported(opt.Job, p.table, n)
			return nil
		})
	}
	err := g.Wait()
	metrics.RecordStep(opt.Job, "export", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	log.Printf("export: kind=%s tables=%d elapsed=%s", opt.Kind, len(reports), time.Since(start).Truncate(time.Millisecond))
	return reports, nil
}

func writeTable(ctx context.Context, p plan, opt Options) (int64, error) {
	repo, err := newRepository(ctx, storage.Config{
		Kind:    opt.Kind,
		DSN:     opt.DSN,
		Table:   p.table,
		Columns: p.names(),
	})
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	if opt.AutoCreate {
		if err := storage.EnsureTable(ctx, opt.Kind, repo, p.table, p.columns); err != nil {
			return 0, err
		}
	}
	return storage.LoadRows(ctx, p.names(), p.rows, opt.BatchSize, repo.CopyFrom)
}

func selected(filter []string, e ingest.Entity) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if strings.EqualFold(f, e.Name) || strings.EqualFold(f, e.Set.Table) {
			return true
		}
	}
	return false
}
