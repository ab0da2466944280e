// Package flatfile reads the delimited, token-based project file format into
// row sets grouped by table.
//
// A record starts with a header token (#<code>:<first value>) whose code
// selects a table layout from the schema registry. The remaining tokens of
// the record are the column values in declaration order. A record ends at a
// line break or at the next header token.
//
// Records with an unknown table code, records without a header and records
// that carry nothing but a header are dropped and counted in Stats; they do
// not abort the load. The only fatal input problem is a quoted span that is
// still open at end of stream.
package flatfile

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"ppetl/internal/config"
	"ppetl/internal/row"
	"ppetl/internal/rowset"
	"ppetl/internal/schema"
)

// Options configures the loader. The zero value reads UTF-8 with ','
// delimiters against the default registry.
type Options struct {
	// Delimiter separates tokens; zero means ','.
	Delimiter rune

	// Encoding is a charset label such as "windows-1252". Empty means UTF-8.
	Encoding string

	// TimestampLayouts are time.Parse layouts tried in order for timestamp
	// columns. Empty means DefaultTimestampLayouts.
	TimestampLayouts []string

	// Registry resolves table codes; nil means schema.Default().
	Registry *schema.Registry
}

// OptionsFrom reads parser options from a config bag. Recognized keys:
// delimiter (string), encoding (string), timestamp_layouts ([]string).
func OptionsFrom(o config.Options) Options {
	return Options{
		Delimiter:        o.Rune("delimiter", ','),
		Encoding:         o.String("encoding", ""),
		TimestampLayouts: o.StringSlice("timestamp_layouts"),
	}
}

// Stats summarizes one load.
type Stats struct {
	Tokens     int // raw tokens consumed
	Records    int // records accepted
	Unknown    int // records dropped for an unregistered table code
	Empty      int // records dropped for carrying only a header
	Headerless int // records dropped for not starting with a header
}

// Dropped returns the total number of dropped records.
func (s Stats) Dropped() int { return s.Unknown + s.Empty + s.Headerless }

// record is the in-progress record while tokens are collected.
type record struct {
	started bool
	header  Header
	table   *schema.Table
	tokens  int
	values  []string
}

// LoadFile opens path and loads it with Load.
func LoadFile(ctx context.Context, path string, opt Options) (*rowset.Tables, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("flatfile: open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("flatfile: close %s: %v", path, cerr)
		}
	}()
	adviseSequential(f)
	return Load(ctx, f, opt)
}

// Load reads the whole stream and returns the accepted rows grouped by table
// name in file order. A malformed stream yields a *ParseError.
func Load(ctx context.Context, r io.Reader, opt Options) (*rowset.Tables, Stats, error) {
	reg := opt.Registry
	if reg == nil {
		reg = schema.Default()
	}
	layouts := opt.TimestampLayouts
	if len(layouts) == 0 {
		layouts = DefaultTimestampLayouts
	}
	src, err := DecodingReader(r, opt.Encoding)
	if err != nil {
		return nil, Stats{}, err
	}

	tk := NewTokenizer(src, opt.Delimiter)
	tables := rowset.NewTables()
	var (
		st   Stats
		rec  record
		last string
	)

	flush := func() {
		defer func() { rec = record{} }()
		switch {
		case !rec.started:
			return
		case rec.header.Raw == "":
			st.Headerless++
		case rec.table == nil:
			st.Unknown++
		case rec.tokens <= 1:
			st.Empty++
		default:
			tables.Append(rec.table.Name, buildRow(rec.table, rec.values, layouts))
			st.Records++
		}
	}

	for {
		if tk.Tokens()&0xFFF == 0 {
			if err := ctx.Err(); err != nil {
				return nil, st, err
			}
		}

		tok, err := tk.Next()
		if err != nil {
			st.Tokens = tk.Tokens()
			return nil, st, &ParseError{Tokens: tk.Tokens(), Header: last, Err: err}
		}

		switch tok.Type {
		case TokenEOF:
			flush()
			st.Tokens = tk.Tokens()
			log.Printf("flatfile: tokens=%d records=%d dropped=%d tables=%d",
				st.Tokens, st.Records, st.Dropped(), len(tables.Names()))
			return tables, st, nil

		case TokenEOL:
			flush()

		case TokenWord:
			if !tok.Quoted {
				if h, ok := ParseHeader(tok.Text); ok {
					flush()
					last = h.Raw
					rec = record{started: true, header: h, tokens: 1}
					if t, ok := reg.Lookup(h.Code); ok {
						rec.table = t
						if h.HasValue {
							rec.values = append(rec.values, h.Value)
						}
					}
					continue
				}
			}
			rec.started = true
			rec.tokens++
			if rec.table != nil {
				rec.values = append(rec.values, tok.Text)
			}
		}
	}
}

// buildRow maps values onto the table layout. Declared columns without a
// value are null; values past the layout become text columns named
// COLUMN_<position>.
func buildRow(t *schema.Table, values []string, layouts []string) row.Row {
	n := len(t.Columns)
	if len(values) > n {
		n = len(values)
	}
	cols := make([]row.Column, 0, n)
	for i, c := range t.Columns {
		v := row.Null()
		if i < len(values) {
			v = decodeValue(values[i], c.Type, layouts)
		}
		cols = append(cols, row.Column{Name: c.Name, Value: v})
	}
	for i := len(t.Columns); i < len(values); i++ {
		v := row.Null()
		if values[i] != "" {
			v = row.Text(values[i])
		}
		cols = append(cols, row.Column{Name: "COLUMN_" + strconv.Itoa(i+1), Value: v})
	}
	return row.New(cols...)
}
