// Package probe samples a project flat file and reports, per table code, how
// many records it carries and what type each field position holds.
//
// The report serves two purposes: checking a file against the schema
// registry (declared types the data does not fit) and drafting registry
// entries for table codes the registry does not know yet.
package probe

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"ppetl/internal/parser/flatfile"
	"ppetl/internal/schema"
)

// DefaultSampleRecords is the per-code sample size when Options leaves it zero.
const DefaultSampleRecords = 1000

// Options control sampling. The zero value reads UTF-8 with ',' delimiters
// against the default registry.
type Options struct {
	Delimiter        rune
	Encoding         string
	TimestampLayouts []string
	Registry         *schema.Registry

	// SampleRecords caps the records per table code whose values feed type
	// inference. Counting always covers the whole file.
	SampleRecords int
}

// Field describes one value position of a table code.
type Field struct {
	Position int // 1-based
	Name     string
	Declared schema.Type // empty for positions past the registered layout
	Inferred schema.Type

	// Filled is the number of sampled records with a non-empty value here.
	Filled int

	ints, reals, bools, times int
}

// Fits reports whether every sampled value decodes as t.
func (f Field) Fits(t schema.Type) bool {
	switch t {
	case schema.TypeInteger:
		return f.ints == f.Filled
	case schema.TypeReal:
		return f.reals == f.Filled
	case schema.TypeBoolean:
		return f.bools == f.Filled
	case schema.TypeTimestamp:
		return f.times == f.Filled
	default:
		return true
	}
}

// Mismatch reports whether the field has a declared type the data does not fit.
func (f Field) Mismatch() bool {
	return f.Declared != "" && !f.Fits(f.Declared)
}

// Code is the probe result for one table code.
type Code struct {
	Code      int
	Table     string // registered name, empty when unknown
	Records   int
	Sampled   int
	MaxFields int
	Fields    []Field
}

// Known reports whether the registry has a layout for the code.
func (c Code) Known() bool { return c.Table != "" }

// Mismatches returns the fields whose declared type the data does not fit.
func (c Code) Mismatches() []Field {
	var out []Field
	for _, f := range c.Fields {
		if f.Mismatch() {
			out = append(out, f)
		}
	}
	return out
}

// Report is the result of Probe. Codes are sorted by table code.
type Report struct {
	Tokens     int
	Records    int
	Empty      int
	Headerless int
	Codes      []Code
}

// Unknown returns the codes the registry does not know.
func (r *Report) Unknown() []Code {
	var out []Code
	for _, c := range r.Codes {
		if !c.Known() {
			out = append(out, c)
		}
	}
	return out
}

// Tables drafts registry entries for the unknown codes, or for every code
// when all is set. Known codes keep their registered names and types;
// other positions are named COLUMN_<n> and take the inferred type.
func (r *Report) Tables(all bool) []schema.Table {
	var out []schema.Table
	for _, c := range r.Codes {
		if c.Known() && !all {
			continue
		}
		t := schema.Table{Code: c.Code, Name: c.Table}
		if t.Name == "" {
			t.Name = fmt.Sprintf("TABLE_%d", c.Code)
		}
		for _, f := range c.Fields {
			typ := f.Declared
			if typ == "" {
				typ = f.Inferred
			}
			t.Columns = append(t.Columns, schema.Column{Name: f.Name, Type: typ})
		}
		out = append(out, t)
	}
	return out
}

// Probe reads the whole stream. A malformed stream yields a
// *flatfile.ParseError.
func Probe(ctx context.Context, r io.Reader, opt Options) (*Report, error) {
	reg := opt.Registry
	if reg == nil {
		reg = schema.Default()
	}
	limit := opt.SampleRecords
	if limit <= 0 {
		limit = DefaultSampleRecords
	}
	layouts := opt.TimestampLayouts
	if len(layouts) == 0 {
		layouts = flatfile.DefaultTimestampLayouts
	}
	src, err := flatfile.DecodingReader(r, opt.Encoding)
	if err != nil {
		return nil, err
	}

	tk := flatfile.NewTokenizer(src, opt.Delimiter)
	rep := &Report{}
	codes := make(map[int]*sampler)
	var (
		header flatfile.Header
		values []string
		inRec  bool
		tokens int
		last   string
	)

	flush := func() {
		defer func() { inRec, header, values, tokens = false, flatfile.Header{}, values[:0], 0 }()
		switch {
		case !inRec:
			return
		case header.Raw == "":
			rep.Headerless++
		case tokens <= 1:
			rep.Empty++
		default:
			s, ok := codes[header.Code]
			if !ok {
				s = newSampler(header.Code, reg)
				codes[header.Code] = s
			}
			s.add(values, limit, layouts)
			rep.Records++
		}
	}

	for {
		if tk.Tokens()&0xFFF == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tok, err := tk.Next()
		if err != nil {
			return nil, &flatfile.ParseError{Tokens: tk.Tokens(), Header: last, Err: err}
		}

		switch tok.Type {
		case flatfile.TokenEOF:
			flush()
			rep.Tokens = tk.Tokens()
			rep.Codes = make([]Code, 0, len(codes))
			for _, s := range codes {
				rep.Codes = append(rep.Codes, s.result())
			}
			sort.Slice(rep.Codes, func(i, j int) bool { return rep.Codes[i].Code < rep.Codes[j].Code })
			return rep, nil

		case flatfile.TokenEOL:
			flush()

		case flatfile.TokenWord:
			if !tok.Quoted {
				if h, ok := flatfile.ParseHeader(tok.Text); ok {
					flush()
					last = h.Raw
					inRec, header, tokens = true, h, 1
					if h.HasValue {
						values = append(values, h.Value)
					}
					continue
				}
			}
			inRec = true
			tokens++
			if header.Raw != "" {
				values = append(values, tok.Text)
			}
		}
	}
}

// sampler accumulates one table code.
type sampler struct {
	code     Code
	declared []schema.Column
}

func newSampler(code int, reg *schema.Registry) *sampler {
	s := &sampler{code: Code{Code: code}}
	if t, ok := reg.Lookup(code); ok {
		s.code.Table = t.Name
		s.declared = t.Columns
	}
	return s
}

func (s *sampler) add(values []string, limit int, layouts []string) {
	c := &s.code
	c.Records++
	if len(values) > c.MaxFields {
		c.MaxFields = len(values)
	}
	for len(c.Fields) < len(values) {
		c.Fields = append(c.Fields, s.field(len(c.Fields)))
	}
	if c.Sampled >= limit {
		return
	}
	c.Sampled++
	for i, v := range values {
		classify(&c.Fields[i], v, layouts)
	}
}

func (s *sampler) field(i int) Field {
	f := Field{Position: i + 1, Name: fmt.Sprintf("COLUMN_%d", i+1)}
	if i < len(s.declared) {
		f.Name = s.declared[i].Name
		f.Declared = s.declared[i].Type
	}
	return f
}

func (s *sampler) result() Code {
	c := s.code
	// Declared columns the file never filled still belong to the layout.
	for len(c.Fields) < len(s.declared) {
		c.Fields = append(c.Fields, s.field(len(c.Fields)))
	}
	for i := range c.Fields {
		c.Fields[i].Inferred = infer(c.Fields[i])
	}
	return c
}

// classify counts which types v decodes as. The parsers match the loader's,
// so a type that fits here decodes without falling back to text.
func classify(f *Field, v string, layouts []string) {
	s := strings.TrimSpace(v)
	if s == "" {
		return
	}
	f.Filled++
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		f.ints++
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		f.reals++
	}
	if _, err := strconv.ParseBool(s); err == nil {
		f.bools++
	}
	for _, layout := range layouts {
		if _, err := time.Parse(layout, s); err == nil {
			f.times++
			break
		}
	}
}

// infer picks the narrowest type every sampled value fits. Integers win
// over booleans so 0/1 columns stay numeric. Empty columns are text.
func infer(f Field) schema.Type {
	if f.Filled == 0 {
		return schema.TypeText
	}
	for _, t := range []schema.Type{schema.TypeInteger, schema.TypeBoolean, schema.TypeReal, schema.TypeTimestamp} {
		if f.Fits(t) {
			return t
		}
	}
	return schema.TypeText
}
