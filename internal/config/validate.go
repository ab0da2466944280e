package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "export.dsn",
// "parser.options.delimiter"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains at least one SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static checks over c. It does not mutate c; callers
// decide whether warnings are fatal.
func Validate(c Config) []Issue {
	var f findings
	if strings.TrimSpace(c.Job) == "" {
		f.errorf("job", "job must not be empty; it labels logs and metrics")
	}
	f.validateSource(c.Source)
	f.validateParser(c.Parser)
	f.validateHTTP(c.Source, c.HTTP)
	f.validateExport(c.Export)
	f.validateRuntime(c.Runtime)
	f.validateMetrics(c.Metrics)
	return []Issue(f)
}

// findings collects issues in check order.
type findings []Issue

func (f *findings) errorf(path, format string, a ...any) {
	*f = append(*f, Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, a...)})
}

func (f *findings) warnf(path, format string, a ...any) {
	*f = append(*f, Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, a...)})
}

func (f *findings) validateSource(s Source) {
	switch s.Kind {
	case "", SourceAuto, SourceFile, SourceDatabase:
	default:
		f.errorf("source.kind", "unknown source kind %q; want auto, file or database", s.Kind)
	}

	path, url := strings.TrimSpace(s.Path), strings.TrimSpace(s.URL)
	switch {
	case path == "" && url == "":
		f.errorf("source.path", "one of source.path or source.url is required")
	case path != "" && url != "":
		f.errorf("source.url", "source.path and source.url are mutually exclusive")
	}
	if url != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		f.errorf("source.url", "unsupported URL scheme in %q", url)
	}

	if s.ProjectID < 0 {
		f.errorf("source.project_id", "project_id must not be negative")
	}
	if s.ProjectID != 0 && s.Kind == SourceFile {
		f.warnf("source.project_id", "project_id is ignored for text files")
	}
}

func (f *findings) validateParser(p Parser) {
	if d, ok := p.Options.Any("delimiter").(string); ok {
		if utf8.RuneCountInString(d) != 1 {
			f.errorf("parser.options.delimiter", "delimiter %q must be a single character", d)
		} else if d == `"` || d == "\n" || d == "#" {
			f.errorf("parser.options.delimiter", "delimiter %q collides with the record syntax", d)
		}
	}

	if enc := p.Options.String("encoding", ""); enc != "" {
		if _, err := htmlindex.Get(enc); err != nil {
			f.errorf("parser.options.encoding", "unknown encoding %q", enc)
		}
	}

	if p.Options.Any("timestamp_layouts") != nil && len(p.Options.StringSlice("timestamp_layouts")) == 0 {
		f.warnf("parser.options.timestamp_layouts", "timestamp_layouts is set but holds no strings; defaults are used")
	}
}

func (f *findings) validateHTTP(s Source, h HTTP) {
	if h.TimeoutSeconds < 0 {
		f.errorf("http.timeout_seconds", "timeout_seconds must not be negative")
	}
	if h.MaxRetries < 0 {
		f.errorf("http.max_retries", "max_retries must not be negative")
	}
	if h.InsecureSkipVerify && s.URL != "" {
		f.warnf("http.insecure_skip_verify", "TLS certificate verification is disabled")
	}
}

func (f *findings) validateExport(e Export) {
	if strings.TrimSpace(e.Kind) == "" {
		if e.DSN != "" {
			f.warnf("export.kind", "export.dsn is set but export.kind is empty; nothing will be exported")
		}
		return
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[e.Kind]; !ok {
		f.warnf("export.kind", "unknown export kind %q; ensure a matching backend is registered", e.Kind)
	}
	if strings.TrimSpace(e.DSN) == "" {
		f.errorf("export.dsn", "export.dsn must not be empty")
	}
	if strings.ContainsAny(e.TablePrefix, " .;\"'`") {
		f.errorf("export.table_prefix", "table_prefix %q contains characters not allowed in identifiers", e.TablePrefix)
	}
}

func (f *findings) validateRuntime(r Runtime) {
	if r.BatchSize <= 0 {
		f.warnf("runtime.batch_size", "batch_size=%d; non-positive batch sizes load everything in one batch", r.BatchSize)
	}
	if r.ExportWorkers < 0 {
		f.errorf("runtime.export_workers", "export_workers must not be negative")
	}
}

func (f *findings) validateMetrics(m Metrics) {
	switch m.Backend {
	case "", "none":
	case "prompush":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			f.errorf("metrics.pushgateway_url", "prompush backend requires pushgateway_url")
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			f.errorf("metrics.datadog_addr", "datadog backend requires datadog_addr")
		}
	default:
		f.errorf("metrics.backend", "unknown metrics backend %q; want none, prompush or datadog", m.Backend)
	}
}
