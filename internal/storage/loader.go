// Package storage defines the backend-agnostic Repository contract used to
// export assembled datasets, a registry of backend factories and DDL
// bootstrappers, and a generic batched loader.
//
// Backends (sqlite, postgres, mssql, mysql) implement CopyFn with their most
// efficient primitive (COPY, bulk copy, multi-row INSERT) and register
// themselves at init time; import internal/storage/all to enable them.
package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn inserts rows aligned to columns and returns the number of rows
// reported as inserted. It is called once per batch and should return
// promptly when ctx is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadRows hands rows to copyFn in consecutive batches of at most batchSize
// rows. It stops at the first failing batch or when ctx is done and returns
// the total reported by the batches that were copied.
func LoadRows(ctx context.Context, columns []string, rows [][]any, batchSize int, copyFn CopyFn) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("storage: batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("storage: copyFn must not be nil")
	}

	var (
		total   int64
		batches int
		start   = time.Now()
	)
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, len(rows))

		t0 := time.Now()
		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		batches++
		if err != nil {
			log.Printf("storage: copy failed batch=%d rows=%d..%d total=%d err=%v", batches, lo, hi, total, err)
			return total, err
		}

		rps := float64(0)
		if d := time.Since(t0); d > 0 {
			rps = float64(n) / d.Seconds()
		}
		log.Printf("storage: batch=%d rps=%.0f inserted=%d total=%d/%d elapsed=%s",
			batches, rps, n, total, len(rows), time.Since(start).Truncate(time.Millisecond))
	}
	return total, nil
}
