// Package schema is the static table registry for the flat-file format: a
// numeric table code selects an ordered list of (column name, semantic type)
// declarations.
//
// The layouts are configuration, not code. They live in tables.yaml, which is
// embedded into the binary and decoded once. Alternative layouts can be
// supplied through Parse without touching the loaders.
package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"ppetl/internal/row"
)

//go:embed tables.yaml
var defaultTables []byte

// Type is the semantic type of a declared column.
type Type string

const (
	TypeInteger   Type = "integer"
	TypeReal      Type = "real"
	TypeText      Type = "text"
	TypeBoolean   Type = "boolean"
	TypeTimestamp Type = "timestamp"
)

// Kind maps the declared type onto the row value variant it decodes to.
func (t Type) Kind() row.Kind {
	switch t {
	case TypeInteger:
		return row.KindInt
	case TypeReal:
		return row.KindReal
	case TypeBoolean:
		return row.KindBool
	case TypeTimestamp:
		return row.KindTime
	default:
		return row.KindText
	}
}

func (t Type) valid() bool {
	switch t {
	case TypeInteger, TypeReal, TypeText, TypeBoolean, TypeTimestamp:
		return true
	}
	return false
}

// Column is one declared column.
type Column struct {
	Name string `yaml:"name"`
	Type Type   `yaml:"type"`
}

// Table is one registry entry.
type Table struct {
	Code    int      `yaml:"code"`
	Name    string   `yaml:"name"`
	Columns []Column `yaml:"columns"`
}

// Registry resolves table codes and names to table layouts. It is read-only
// after construction and safe for concurrent use.
type Registry struct {
	byCode map[int]*Table
	byName map[string]*Table
}

type document struct {
	Tables []Table `yaml:"tables"`
}

// Parse decodes a YAML registry document.
func Parse(r io.Reader) (*Registry, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("schema: decode registry: %w", err)
	}

	reg := &Registry{
		byCode: make(map[int]*Table, len(doc.Tables)),
		byName: make(map[string]*Table, len(doc.Tables)),
	}
	for i := range doc.Tables {
		t := &doc.Tables[i]
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("schema: table code %d has no name", t.Code)
		}
		if _, dup := reg.byCode[t.Code]; dup {
			return nil, fmt.Errorf("schema: duplicate table code %d", t.Code)
		}
		if _, dup := reg.byName[t.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate table name %q", t.Name)
		}
		for _, c := range t.Columns {
			if !c.Type.valid() {
				return nil, fmt.Errorf("schema: %s.%s: unknown type %q", t.Name, c.Name, c.Type)
			}
		}
		reg.byCode[t.Code] = t
		reg.byName[t.Name] = t
	}
	return reg, nil
}

// Encode writes tables as a registry document that Parse accepts.
func Encode(w io.Writer, tables []Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Tables: tables}); err != nil {
		return fmt.Errorf("schema: encode registry: %w", err)
	}
	return enc.Close()
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry built from the embedded layouts.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := Parse(bytes.NewReader(defaultTables))
		if err != nil {
			panic(err)
		}
		defaultReg = reg
	})
	return defaultReg
}

// Lookup returns the table registered under code.
func (r *Registry) Lookup(code int) (*Table, bool) {
	t, ok := r.byCode[code]
	return t, ok
}

// ByName returns the table registered under name.
func (r *Registry) ByName(name string) (*Table, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Tables returns every table ordered by code.
func (r *Registry) Tables() []*Table {
	out := make([]*Table, 0, len(r.byCode))
	for _, t := range r.byCode {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
