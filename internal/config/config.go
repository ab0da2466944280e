// Package config defines the JSON (or YAML) configuration model for an
// ingestion run and helpers to load, override and validate it.
//
// Example (trimmed):
//
//	{
//	  "job":      "ppetl",
//	  "source":   { "kind": "auto", "path": "plan.pp", "project_id": 0 },
//	  "parser":   { "options": { "delimiter": ",", "encoding": "windows-1252" } },
//	  "normalize":{ "outline": true },
//	  "export":   { "kind": "sqlite", "dsn": "out.db", "table_prefix": "pp_" },
//	  "runtime":  { "export_workers": 2, "batch_size": 5000 }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourceAuto     = "auto"
	SourceFile     = "file"
	SourceDatabase = "database"
)

// Config is the top-level object decoded from a run configuration file.
type Config struct {
	// Job names the run in logs and metrics.
	Job string `json:"job" yaml:"job"`

	Source    Source    `json:"source" yaml:"source"`
	Parser    Parser    `json:"parser" yaml:"parser"`
	Database  Database  `json:"database" yaml:"database"`
	HTTP      HTTP      `json:"http" yaml:"http"`
	Normalize Normalize `json:"normalize" yaml:"normalize"`
	Export    Export    `json:"export" yaml:"export"`
	Runtime   Runtime   `json:"runtime" yaml:"runtime"`
	Metrics   Metrics   `json:"metrics" yaml:"metrics"`
}

// Source identifies the project input.
type Source struct {
	// Kind is "auto", "file" or "database". "auto" sniffs the input.
	Kind string `json:"kind" yaml:"kind"`

	// Path is a local file. Exactly one of Path and URL is set.
	Path string `json:"path" yaml:"path"`

	// URL is fetched over HTTP(S).
	URL string `json:"url" yaml:"url"`

	// ProjectID scopes database queries. Ignored for text files.
	ProjectID int64 `json:"project_id" yaml:"project_id"`
}

// Parser configures the text-file loader. Recognised option keys:
//
//	delimiter (string, first rune), encoding (string, WHATWG label),
//	timestamp_layouts ([]string, Go time layouts tried in order)
type Parser struct {
	Options Options `json:"options" yaml:"options"`
}

// Database configures the SQLite loader.
type Database struct {
	// DateFormat is the Go layout for timestamps stored as text.
	DateFormat string `json:"date_format" yaml:"date_format"`
}

// HTTP configures URL sources.
type HTTP struct {
	TimeoutSeconds     int               `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries         int               `json:"max_retries" yaml:"max_retries"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	Headers            map[string]string `json:"headers" yaml:"headers"`
}

// Normalize controls post-processing of the outline tree.
type Normalize struct {
	// Outline builds the bar outline and runs name inheritance and
	// placeholder pruning on it.
	Outline bool `json:"outline" yaml:"outline"`
}

// Export selects an optional relational sink for the assembled dataset.
type Export struct {
	// Kind is a registered storage backend (sqlite, postgres, mssql, mysql).
	// Empty disables export.
	Kind string `json:"kind" yaml:"kind"`

	// DSN is the backend connection string.
	DSN string `json:"dsn" yaml:"dsn"`

	// TablePrefix is prepended to lower-cased entity names.
	TablePrefix string `json:"table_prefix" yaml:"table_prefix"`

	// AutoCreateTable issues CREATE TABLE IF NOT EXISTS before loading.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`

	// Entities restricts the export to the named entity sets. Empty means all.
	Entities []string `json:"entities" yaml:"entities"`
}

// Runtime holds concurrency and batching knobs.
type Runtime struct {
	ExportWorkers int `json:"export_workers" yaml:"export_workers"`
	BatchSize     int `json:"batch_size" yaml:"batch_size"`
}

// Metrics selects a metrics backend: "", "none", "prompush" or "datadog".
type Metrics struct {
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr"`
	Namespace      string `json:"namespace" yaml:"namespace"`
}

// Default returns a configuration with every knob at its default value.
func Default() Config {
	return Config{
		Job:      "ppetl",
		Source:   Source{Kind: SourceAuto},
		Parser:   Parser{Options: Options{}},
		Database: Database{DateFormat: "2006-01-02 15:04:05"},
		HTTP:     HTTP{TimeoutSeconds: 30},
		Runtime:  Runtime{ExportWorkers: 1, BatchSize: 5000},
	}
}

// Load reads path over Default. Files ending in .yaml or .yml are decoded as
// YAML, everything else as JSON. Environment overrides are applied last.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	c, err := Decode(b, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := ApplyEnv(&c, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Decode parses b over Default. ext selects the format (".yaml"/".yml" or
// anything else for JSON). Unknown JSON fields are rejected.
func Decode(b []byte, ext string) (Config, error) {
	c := Default()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return Config{}, fmt.Errorf("decode json: %w", err)
		}
	}
	if c.Parser.Options == nil {
		c.Parser.Options = Options{}
	}
	return c, nil
}

// Environment variables read by ApplyEnv.
const (
	EnvExportWorkers = "PPETL_EXPORT_WORKERS"
	EnvBatchSize     = "PPETL_BATCH_SIZE"
)

// ApplyEnv overrides runtime knobs from the environment. lookup is normally
// os.LookupEnv.
func ApplyEnv(c *Config, lookup func(string) (string, bool)) error {
	for _, e := range []struct {
		name string
		dst  *int
	}{
		{EnvExportWorkers, &c.Runtime.ExportWorkers},
		{EnvBatchSize, &c.Runtime.BatchSize},
	} {
		v, ok := lookup(e.name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", e.name, v, err)
		}
		*e.dst = n
	}
	return nil
}

// Options holds free-form parser settings. Accessors return def when a key
// is absent or holds an unexpected type.
type Options map[string]any

// String returns the string stored under key.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Rune returns the first rune of the string stored under key.
func (o Options) Rune(key string, def rune) rune {
	s, _ := o[key].(string)
	for _, r := range s {
		return r
	}
	return def
}

// StringSlice returns the strings of a list value, skipping other elements.
// It returns nil when key is absent so callers can tell unset from empty.
func (o Options) StringSlice(key string) []string {
	switch v := o[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Any returns the raw value stored under key.
func (o Options) Any(key string) any { return o[key] }

// UnmarshalJSON decodes null as an empty, non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	if m == nil {
		m = Options{}
	}
	*o = m
	return nil
}
