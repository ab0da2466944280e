package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ppetl/internal/config"
	"ppetl/internal/datasource"
	"ppetl/internal/datasource/file"
	"ppetl/internal/datasource/httpds"
	"ppetl/internal/hierarchy"
	"ppetl/internal/metrics"
	"ppetl/internal/parser/flatfile"
	"ppetl/internal/rowset"
	"ppetl/internal/schema"
	"ppetl/internal/source/sqlite"
)

// ErrSourceAccess marks failures to open, stage or read the input. Errors
// returned for it also wrap the underlying cause.
var ErrSourceAccess = errors.New("ingest: source access")

func sourceErr(err error) error {
	return fmt.Errorf("%w: %w", ErrSourceAccess, err)
}

// Result is the outcome of one run.
type Result struct {
	RunID uuid.UUID

	// Kind is the reader used: config.SourceFile or config.SourceDatabase.
	Kind string

	// Digest is the xxh3 of the input bytes and Size their count. Both are
	// zero for a local database file.
	Digest uint64
	Size   int64

	Dataset   *Dataset
	FileStats flatfile.Stats

	// Tree and Normalize are set when a Builder was given.
	Tree      *hierarchy.Tree
	Normalize hierarchy.Stats
}

// Runner carries the collaborators of a run. The zero value reads with the
// default schema registry and builds no tree.
type Runner struct {
	Builder Builder

	// Registry overrides schema.Default() for flat files.
	Registry *schema.Registry

	// TempDir is where URL inputs are staged; empty means os.TempDir().
	TempDir string

	// Transport overrides the HTTP transport for URL inputs.
	Transport http.RoundTripper
}

// Run ingests the input cfg names with builder b (which may be nil).
func Run(ctx context.Context, cfg config.Config, b Builder) (*Result, error) {
	return (&Runner{Builder: b}).Run(ctx, cfg)
}

// Run loads the input, assembles the dataset and, with a Builder, builds
// and normalizes the task tree. Nothing partial is returned on error.
func (rn *Runner) Run(ctx context.Context, cfg config.Config) (*Result, error) {
	res := &Result{RunID: uuid.New()}
	job := cfg.Job
	log.Printf("ingest: run=%s job=%s start", res.RunID, job)

	path, cleanup, err := rn.localize(ctx, cfg, res)
	if err != nil {
		metrics.RecordStep(job, "load", err, 0)
		return nil, err
	}
	defer cleanup()

	kind := cfg.Source.Kind
	if kind == "" || kind == config.SourceAuto {
		head, err := file.NewLocal(path).Peek(ctx, sniffLen)
		if err != nil {
			metrics.RecordStep(job, "load", err, 0)
			return nil, sourceErr(err)
		}
		kind = Detect(head)
	}
	res.Kind = kind

	switch kind {
	case config.SourceFile:
		err = rn.runFile(ctx, cfg, path, res)
	case config.SourceDatabase:
		err = rn.runDatabase(ctx, cfg, path, res)
	default:
		err = fmt.Errorf("ingest: unknown source kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	for _, e := range res.Dataset.Entities() {
		metrics.RecordRows(job, e.Set.Table, int64(e.Set.Len()))
	}

	if rn.Builder != nil {
		start := time.Now()
		tree, err := rn.Builder.Build(ctx, res.Dataset)
		metrics.RecordStep(job, "build", err, time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("ingest: build: %w", err)
		}
		if tree != nil {
			start = time.Now()
			res.Normalize = hierarchy.Normalize(tree)
			metrics.RecordStep(job, "normalize", nil, time.Since(start))
			res.Tree = tree
			log.Printf("ingest: run=%s nodes=%d renamed=%d pruned=%d",
				res.RunID, tree.Len(), res.Normalize.Renamed, res.Normalize.Pruned)
		}
	}

	log.Printf("ingest: run=%s kind=%s rows=%d digest=%016x done", res.RunID, res.Kind, res.Dataset.Rows(), res.Digest)
	return res, nil
}

// localize returns a local path for the input. URL inputs are staged to a
// temporary file that cleanup removes.
func (rn *Runner) localize(ctx context.Context, cfg config.Config, res *Result) (string, func(), error) {
	if cfg.Source.URL == "" {
		if cfg.Source.Path == "" {
			return "", nil, errors.New("ingest: no source path or url")
		}
		return cfg.Source.Path, func() {}, nil
	}

	headers := make(http.Header, len(cfg.HTTP.Headers))
	for k, v := range cfg.HTTP.Headers {
		headers.Set(k, v)
	}
	src := httpds.NewSource(cfg.Source.URL, httpds.Config{
		Timeout:            time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		MaxRetries:         cfg.HTTP.MaxRetries,
		InsecureSkipVerify: cfg.HTTP.InsecureSkipVerify,
		Headers:            headers,
		Transport:          rn.Transport,
	})
	st, err := datasource.Stage(ctx, src, rn.TempDir, "ppetl-*")
	if err != nil {
		return "", nil, sourceErr(err)
	}
	res.Digest, res.Size = st.Digest, st.Size
	cleanup := func() {
		if err := st.Remove(); err != nil {
			log.Printf("ingest: %v", err)
		}
	}
	return st.Path, cleanup, nil
}

func (rn *Runner) runFile(ctx context.Context, cfg config.Config, path string, res *Result) error {
	job := cfg.Job
	opt := flatfile.OptionsFrom(cfg.Parser.Options)
	opt.Registry = rn.Registry

	start := time.Now()
	var (
		tables *rowset.Tables
		err    error
	)
	if res.Size > 0 {
		// Staged inputs already carry a digest.
		tables, res.FileStats, err = flatfile.LoadFile(ctx, path, opt)
	} else {
		tables, res.FileStats, err = rn.loadDigested(ctx, path, opt, res)
	}
	metrics.RecordStep(job, "load", err, time.Since(start))
	if err != nil {
		return classifyLoadErr(err)
	}
	metrics.RecordDropped(job, "unknown_table", int64(res.FileStats.Unknown))
	metrics.RecordDropped(job, "empty_record", int64(res.FileStats.Empty))
	metrics.RecordDropped(job, "headerless", int64(res.FileStats.Headerless))

	start = time.Now()
	res.Dataset = AssembleFile(tables)
	metrics.RecordStep(job, "assemble", nil, time.Since(start))
	return nil
}

// loadDigested parses a local flat file while hashing it.
func (rn *Runner) loadDigested(ctx context.Context, path string, opt flatfile.Options, res *Result) (*rowset.Tables, flatfile.Stats, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return nil, flatfile.Stats{}, sourceErr(err)
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			log.Printf("ingest: close %s: %v", path, cerr)
		}
	}()

	dr := datasource.NewDigestReader(rc)
	tables, st, err := flatfile.Load(ctx, dr, opt)
	if err != nil {
		return nil, st, err
	}
	// Drain anything the loader left unread so the digest covers the file.
	if _, err := io.Copy(io.Discard, dr); err != nil {
		return nil, st, sourceErr(err)
	}
	res.Digest, res.Size = dr.Sum64(), dr.N()
	return tables, st, nil
}

// classifyLoadErr marks I/O failures as source access errors. A malformed
// token stream and cancellation keep their own identity.
func classifyLoadErr(err error) error {
	if errors.Is(err, ErrSourceAccess) || errors.Is(err, flatfile.ErrUnterminatedQuote) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pe *flatfile.ParseError
	var fe *fs.PathError
	if errors.As(err, &pe) || errors.As(err, &fe) {
		return sourceErr(err)
	}
	return err
}

func (rn *Runner) runDatabase(ctx context.Context, cfg config.Config, path string, res *Result) error {
	job := cfg.Job
	start := time.Now()
	db, err := sqlite.Open(ctx, path, sqlite.Options{DateFormat: cfg.Database.DateFormat})
	if err != nil {
		metrics.RecordStep(job, "load", err, time.Since(start))
		return sourceErr(err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Printf("ingest: close %s: %v", path, cerr)
		}
	}()

	ds, err := AssembleDatabase(ctx, db, cfg.Source.ProjectID)
	metrics.RecordStep(job, "load", err, time.Since(start))
	if err != nil {
		return err
	}
	res.Dataset = ds
	return nil
}
