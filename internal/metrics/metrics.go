// Package metrics is the instrumentation facade used by ingestion and export.
//
// Until SetBackend is called every call is a no-op. The prompush and datadog
// subpackages provide the concrete backends.
package metrics

import "time"

const (
	StepTotal     = "ppetl_step_total"
	StepDuration  = "ppetl_step_duration_seconds"
	RowsTotal     = "ppetl_rows_total"
	DroppedTotal  = "ppetl_dropped_total"
	ExportedTotal = "ppetl_exported_rows_total"
)

// Labels are attached to every sample of a call.
type Labels map[string]string

// Backend receives samples. Implementations must be safe for concurrent use;
// export records from several goroutines.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush delivers buffered samples. Push-style backends send here.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

// backend is set once at startup, before any step runs.
var backend Backend = nopBackend{}

// SetBackend installs b. A nil b is ignored.
func SetBackend(b Backend) {
	if b != nil {
		backend = b
	}
}

// Flush flushes the installed backend.
func Flush() error { return backend.Flush() }

// RecordStep counts one run of a pipeline step (load, assemble, build,
// normalize, export) and observes how long it took.
func RecordStep(job, step string, err error, d time.Duration) {
	lbls := Labels{"job": job, "step": step, "status": "success"}
	if err != nil {
		lbls["status"] = "failure"
	}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows counts rows loaded into table.
func RecordRows(job, table string, n int64) {
	count(RowsTotal, n, Labels{"job": job, "table": table})
}

// RecordDropped counts input records skipped for reason.
func RecordDropped(job, reason string, n int64) {
	count(DroppedTotal, n, Labels{"job": job, "reason": reason})
}

// RecordExported counts rows written to an export table.
func RecordExported(job, table string, n int64) {
	count(ExportedTotal, n, Labels{"job": job, "table": table})
}

// count skips non-positive n so empty tables leave no series behind.
func count(name string, n int64, lbls Labels) {
	if n > 0 {
		backend.IncCounter(name, float64(n), lbls)
	}
}
