// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Ingestion runs are short-lived batch jobs, so collected metrics are pushed
// to a Pushgateway at the end of a run instead of being exposed on a scrape
// endpoint. All Prometheus-specific dependencies stay in this package.
package prompush

import (
	"fmt"

	"ppetl/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // ppetl_step_total
	stepDuration *prometheus.SummaryVec // ppetl_step_duration_seconds

	rowCounter      *prometheus.CounterVec // ppetl_rows_total
	droppedCounter  *prometheus.CounterVec // ppetl_dropped_total
	exportedCounter *prometheus.CounterVec // ppetl_exported_rows_total
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName is the Pushgateway grouping job; gatewayURL is the server base URL.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "ppetl"
	}

	reg := prometheus.NewRegistry()

	// job is the Pushgateway grouping key, so it is not repeated as a label.
	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Total number of ingestion step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Duration of ingestion steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Rows loaded from the source, per logical table.",
		},
		[]string{"table"},
	)
	droppedCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.DroppedTotal,
			Help: "Records dropped while loading, per reason.",
		},
		[]string{"reason"},
	)
	exportedCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.ExportedTotal,
			Help: "Rows written to the export target, per destination table.",
		},
		[]string{"table"},
	)

	for _, c := range []struct {
		what string
		col  prometheus.Collector
	}{
		{"step counter", stepCounter},
		{"step summary", stepDuration},
		{"row counter", rowCounter},
		{"dropped counter", droppedCounter},
		{"exported counter", exportedCounter},
	} {
		if err := reg.Register(c.col); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", c.what, err)
		}
	}

	return &Backend{
		gatewayURL:      gatewayURL,
		jobName:         jobName,
		reg:             reg,
		stepCounter:     stepCounter,
		stepDuration:    stepDuration,
		rowCounter:      rowCounter,
		droppedCounter:  droppedCounter,
		exportedCounter: exportedCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case metrics.RowsTotal:
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["table"]).Add(delta)

	case metrics.DroppedTotal:
		if b.droppedCounter == nil {
			return
		}
		b.droppedCounter.WithLabelValues(labels["reason"]).Add(delta)

	case metrics.ExportedTotal:
		if b.exportedCounter == nil {
			return
		}
		b.exportedCounter.WithLabelValues(labels["table"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
