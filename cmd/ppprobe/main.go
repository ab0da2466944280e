package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"
)

// main is the entrypoint for the probing CLI. It reads a project flat file
// from a path or URL, reports records and inferred field types per table
// code, and prints registry entries for the codes the registry does not know.
//
// The printed YAML is meant to be reviewed, named and appended to the
// registry used by cmd/ppetl.
func main() {
	var (
		flagPath = flag.String(
			"path",
			"",
			"local project flat file",
		)
		flagURL = flag.String(
			"url",
			"",
			"URL of the project flat file (alternative to -path)",
		)
		flagEncoding = flag.String(
			"encoding",
			"",
			"input charset label, e.g. windows-1252 (default UTF-8)",
		)
		flagDelimiter = flag.String(
			"delimiter",
			",",
			"token delimiter",
		)
		flagRegistry = flag.String(
			"registry",
			"",
			"registry YAML to check against (default: built-in layouts)",
		)
		flagSample = flag.Int(
			"sample",
			0,
			"records per table code used for type inference (0 = default)",
		)
		flagAll = flag.Bool(
			"all",
			false,
			"print entries for every table code, not only unknown ones",
		)
		flagFormat = flag.String(
			"format",
			"yaml",
			"output format: yaml (registry draft) or json (full report)",
		)
		flagAllowInsecure = flag.Bool(
			"allow-insecure",
			false,
			"allow insecure certs",
		)
	)
	flag.Parse()

	if (*flagPath == "") == (*flagURL == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -path or -url is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	err := run(ctx, options{
		path:          *flagPath,
		url:           *flagURL,
		encoding:      *flagEncoding,
		delimiter:     *flagDelimiter,
		registry:      *flagRegistry,
		sample:        *flagSample,
		all:           *flagAll,
		format:        *flagFormat,
		allowInsecure: *flagAllowInsecure,
	}, os.Stdout)
	if err != nil {
		log.Fatalf("probe: %v", err)
	}
}
