package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"ppetl/internal/metrics"

	dto "github.com/prometheus/client_model/go"
)

// snapshot gathers the backend registry into "name{v1,v2}" -> value, where
// the value is the counter total or the summary sample count.
func snapshot(tb testing.TB, b *Backend) map[string]float64 {
	tb.Helper()
	families, err := b.reg.Gather()
	if err != nil {
		tb.Fatalf("Gather: %v", err)
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			out[mf.GetName()+"{"+labelValues(m)+"}"] = value(m)
		}
	}
	return out
}

func labelValues(m *dto.Metric) string {
	pairs := m.GetLabel()
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].GetName() < pairs[j].GetName() })
	vals := make([]string, len(pairs))
	for i, p := range pairs {
		vals[i] = p.GetValue()
	}
	return strings.Join(vals, ",")
}

func value(m *dto.Metric) float64 {
	if c := m.GetCounter(); c != nil {
		return c.GetValue()
	}
	if s := m.GetSummary(); s != nil {
		return float64(s.GetSampleCount())
	}
	return -1
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	if b, err := NewBackend("ppetl", ""); err == nil || b != nil {
		t.Fatalf("NewBackend without gateway = %v, %v; want error", b, err)
	}
	b, err := NewBackend("", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if b.jobName != "ppetl" {
		t.Fatalf("job = %q, want default ppetl", b.jobName)
	}
}

func TestSamplesLandInRegistry(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("nightly", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"job": "nightly", "step": "load", "status": "success"})
	b.ObserveHistogram(metrics.StepDuration, 0.4, metrics.Labels{"step": "load", "status": "success"})
	b.ObserveHistogram(metrics.StepDuration, 0.6, metrics.Labels{"step": "load", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 5, metrics.Labels{"table": "TASK"})
	b.IncCounter(metrics.RowsTotal, 2, metrics.Labels{"table": "TASK"})
	b.IncCounter(metrics.DroppedTotal, 3, metrics.Labels{"reason": "unknown_table"})
	b.IncCounter(metrics.ExportedTotal, 7, metrics.Labels{"table": "pp_task"})
	b.IncCounter("not_registered", 1, metrics.Labels{"table": "TASK"})
	b.ObserveHistogram("not_registered", 1, nil)

	want := map[string]float64{
		metrics.StepTotal + "{success,load}":     1,
		metrics.StepDuration + "{success,load}":  2,
		metrics.RowsTotal + "{TASK}":             7,
		metrics.DroppedTotal + "{unknown_table}": 3,
		metrics.ExportedTotal + "{pp_task}":      7,
	}
	got := snapshot(t, b)
	if len(got) != len(want) {
		t.Fatalf("series = %v, want %v", got, want)
	}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("%s = %v, want %v", k, got[k], w)
		}
	}
}

func TestZeroBackendIgnoresSamples(t *testing.T) {
	t.Parallel()

	var b Backend
	for _, name := range []string{metrics.StepTotal, metrics.RowsTotal, metrics.DroppedTotal, metrics.ExportedTotal} {
		b.IncCounter(name, 1, metrics.Labels{})
	}
	b.ObserveHistogram(metrics.StepDuration, 1, metrics.Labels{})
}

func TestFlushPushesJobGroup(t *testing.T) {
	t.Parallel()

	type pushed struct {
		method, path, body string
	}
	got := make(chan pushed, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- pushed{r.Method, r.URL.Path, string(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	b, err := NewBackend("ppetl-job", srv.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{"table": "CALENDAR"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	select {
	case p := <-got:
		if p.method != http.MethodPut || p.path != "/metrics/job/ppetl-job" || p.body == "" {
			t.Fatalf("push = %s %s (%d bytes)", p.method, p.path, len(p.body))
		}
	default:
		t.Fatal("Flush did not reach the gateway")
	}
}

func TestFlushReportsGatewayError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	b, err := NewBackend("ppetl", srv.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if err := b.Flush(); err == nil {
		t.Fatal("Flush succeeded against a failing gateway")
	}
}
