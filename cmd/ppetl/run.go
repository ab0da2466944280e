package main

import (
	"context"
	"fmt"

	"ppetl/internal/config"
	"ppetl/internal/export"
	"ppetl/internal/ingest"
)

// summary is what a run prints on stdout.
type summary struct {
	RunID    string               `json:"run_id"`
	Job      string               `json:"job"`
	Kind     string               `json:"kind"`
	Digest   string               `json:"digest,omitempty"`
	Bytes    int64                `json:"bytes,omitempty"`
	Entities map[string]int       `json:"entities"`
	Dropped  int                  `json:"dropped_records,omitempty"`
	Nodes    int                  `json:"outline_nodes,omitempty"`
	Renamed  int                  `json:"outline_renamed,omitempty"`
	Pruned   int                  `json:"outline_pruned,omitempty"`
	Exported []export.TableReport `json:"exported,omitempty"`
}

// runJob ingests the configured input and, when cfg.Export.Kind is set,
// writes the dataset to the export sink.
func runJob(ctx context.Context, cfg config.Config) (*summary, error) {
	var b ingest.Builder
	if cfg.Normalize.Outline {
		b = ingest.OutlineBuilder{}
	}

	res, err := ingest.Run(ctx, cfg, b)
	if err != nil {
		return nil, err
	}

	sum := &summary{
		RunID:    res.RunID.String(),
		Job:      cfg.Job,
		Kind:     res.Kind,
		Bytes:    res.Size,
		Entities: make(map[string]int),
		Dropped:  res.FileStats.Dropped(),
	}
	if res.Digest != 0 {
		sum.Digest = fmt.Sprintf("%016x", res.Digest)
	}
	for _, e := range res.Dataset.Entities() {
		sum.Entities[e.Name] = e.Set.Len()
	}
	if res.Tree != nil {
		sum.Nodes = res.Tree.Len()
		sum.Renamed = res.Normalize.Renamed
		sum.Pruned = res.Normalize.Pruned
	}

	if cfg.Export.Kind == "" {
		return sum, nil
	}
	reports, err := export.Write(ctx, res.Dataset, export.OptionsFrom(cfg))
	if err != nil {
		return nil, err
	}
	sum.Exported = reports
	return sum, nil
}
