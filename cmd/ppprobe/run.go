package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"unicode/utf8"

	"ppetl/internal/datasource"
	"ppetl/internal/datasource/file"
	"ppetl/internal/datasource/httpds"
	"ppetl/internal/probe"
	"ppetl/internal/schema"
)

type options struct {
	path, url     string
	encoding      string
	delimiter     string
	registry      string
	sample        int
	all           bool
	format        string
	allowInsecure bool
}

func run(ctx context.Context, o options, out io.Writer) error {
	popt := probe.Options{Encoding: o.encoding, SampleRecords: o.sample}
	if o.delimiter != "" {
		r, size := utf8.DecodeRuneInString(o.delimiter)
		if size != len(o.delimiter) {
			return fmt.Errorf("delimiter %q must be a single character", o.delimiter)
		}
		popt.Delimiter = r
	}
	if o.registry != "" {
		reg, err := loadRegistry(o.registry)
		if err != nil {
			return err
		}
		popt.Registry = reg
	}

	var src datasource.Source
	if o.url != "" {
		src = httpds.NewSource(o.url, httpds.Config{InsecureSkipVerify: o.allowInsecure})
	} else {
		src = file.NewLocal(o.path)
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			log.Printf("close %s: %v", datasource.NameOf(src), cerr)
		}
	}()

	rep, err := probe.Probe(ctx, rc, popt)
	if err != nil {
		return err
	}
	logReport(datasource.NameOf(src), rep)

	switch o.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "", "yaml":
		return schema.Encode(out, rep.Tables(o.all))
	default:
		return fmt.Errorf("unknown format %q; want yaml or json", o.format)
	}
}

func loadRegistry(path string) (*schema.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return schema.Parse(f)
}

func logReport(name string, rep *probe.Report) {
	log.Printf("probe: %s tokens=%d records=%d empty=%d headerless=%d codes=%d unknown=%d",
		name, rep.Tokens, rep.Records, rep.Empty, rep.Headerless, len(rep.Codes), len(rep.Unknown()))
	for _, c := range rep.Codes {
		for _, f := range c.Mismatches() {
			log.Printf("probe: %s.%s declared %s but sampled values look like %s",
				c.Table, f.Name, f.Declared, f.Inferred)
		}
	}
}
