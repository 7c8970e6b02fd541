// Package ingest drives the end-to-end flow: documents in, consolidated
// schema plus flat rows out. The engine packages stay pure; everything
// with I/O, logging or metrics lives here.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/siegeai/siegeingest/consolidate"
	"github.com/siegeai/siegeingest/flatten"
	"github.com/siegeai/siegeingest/infer"
	"github.com/siegeai/siegeingest/jsonschema"
	"github.com/siegeai/siegeingest/validate"
)

const (
	// DefaultTable matches the table name the pipeline has always written.
	DefaultTable = "processed_data"

	defaultWorkers   = 4
	defaultBatchSize = 100
)

// Pipeline holds one ingestion run's knobs. The zero value is usable.
type Pipeline struct {
	MaxDepth   int
	MaxSamples int
	Tolerance  float64

	// Workers bounds concurrent per-document inference. Consolidation
	// itself is a sequential fold regardless.
	Workers int

	Table     string
	BatchSize int

	Log *slog.Logger
}

// RunResult summarizes one completed run.
type RunResult struct {
	Documents int
	Skipped   int
	Invalid   int
	Rows      int

	Columns []flatten.Column
	Schema  jsonschema.Schema
	Report  consolidate.Report

	Elapsed time.Duration
}

// Run ingests every document from src and hands the flattened table to
// sink. Documents that fail to decode or infer are logged and skipped; the
// run keeps going.
func (p *Pipeline) Run(ctx context.Context, src DocumentSource, sink TableSink) (*RunResult, error) {
	start := time.Now()
	log := p.logger()

	docs, skipped, err := p.collect(ctx, src, log)
	if err != nil {
		return nil, err
	}
	log.Info("collected documents", "count", len(docs), "skipped", skipped)

	schemas, inferSkipped := p.inferAll(ctx, docs, log)
	skipped += inferSkipped

	kept := docs[:0]
	keptSchemas := schemas[:0]
	for i, s := range schemas {
		if s != nil {
			kept = append(kept, docs[i])
			keptSchemas = append(keptSchemas, s)
		}
	}

	schema := consolidate.Consolidate(keptSchemas)
	if n := len(keptSchemas); n > 1 {
		mergeOperations.Add(float64(n - 1))
	}
	report := consolidate.ValidateConsistency(keptSchemas, p.tolerance())
	log.Info("consolidated corpus schema",
		"documents", len(keptSchemas), "score", report.Score, "issues", len(report.Issues))

	cols := flatten.Schema(schema, "", p.maxDepth())
	if err := sink.EnsureTable(p.table(), cols); err != nil {
		return nil, fmt.Errorf("ensure table: %w", err)
	}

	res := &RunResult{
		Documents: len(kept),
		Skipped:   skipped,
		Columns:   cols,
		Schema:    schema,
		Report:    report,
	}

	batch := make([]flatten.Row, 0, p.batchSize())
	for _, d := range kept {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if vr := validate.Validate(d.Value, schema); !vr.Valid {
			// Expected on inconsistent corpora; the row still lands.
			res.Invalid++
			validationFailures.Inc()
			log.Debug("document does not conform to consolidated schema",
				"doc", d.Name, "violations", len(vr.Violations))
		}

		row, err := flatten.Record(d.Value, schema, p.maxDepth())
		if err != nil {
			log.Warn("could not flatten document", "doc", d.Name, "err", err)
			documentErrors.Inc()
			res.Skipped++
			continue
		}

		batch = append(batch, row)
		res.Rows++
		recordsFlattened.Inc()
		documentsProcessed.Inc()

		if len(batch) >= p.batchSize() {
			if err := sink.WriteBatch(batch); err != nil {
				return nil, fmt.Errorf("write batch: %w", err)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := sink.WriteBatch(batch); err != nil {
			return nil, fmt.Errorf("write batch: %w", err)
		}
	}

	res.Elapsed = time.Since(start)
	runDuration.Observe(res.Elapsed.Seconds())
	log.Info("ingestion complete",
		"rows", res.Rows, "invalid", res.Invalid, "skipped", res.Skipped, "elapsed", res.Elapsed)
	return res, nil
}

func (p *Pipeline) collect(ctx context.Context, src DocumentSource, log *slog.Logger) ([]*Document, int, error) {
	var docs []*Document
	skipped := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		d, err := src.Next()
		if errors.Is(err, io.EOF) {
			return docs, skipped, nil
		}
		if err != nil {
			log.Warn("skipping document", "err", err)
			documentErrors.Inc()
			skipped++
			continue
		}
		docs = append(docs, d)
	}
}

// inferAll runs per-document inference across the worker pool. Inference is
// pure and merge never mutates operands, so no locking is needed beyond
// the index fan-out.
func (p *Pipeline) inferAll(ctx context.Context, docs []*Document, log *slog.Logger) ([]jsonschema.Schema, int) {
	schemas := make([]jsonschema.Schema, len(docs))
	if len(docs) == 0 {
		return schemas, 0
	}

	idx := make(chan int)
	var skipped sync.Map

	wg := &sync.WaitGroup{}
	for w := 0; w < p.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				s, err := infer.Infer(docs[i].Value, p.maxSamples())
				if err != nil {
					log.Warn("could not infer schema", "doc", docs[i].Name, "err", err)
					documentErrors.Inc()
					skipped.Store(i, struct{}{})
					continue
				}
				schemas[i] = s
			}
		}()
	}

	for i := range docs {
		if ctx.Err() != nil {
			break
		}
		idx <- i
	}
	close(idx)
	wg.Wait()

	n := 0
	skipped.Range(func(_, _ any) bool { n++; return true })
	return schemas, n
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

func (p *Pipeline) maxDepth() int {
	if p.MaxDepth > 0 {
		return p.MaxDepth
	}
	return flatten.DefaultMaxDepth
}

func (p *Pipeline) maxSamples() int {
	if p.MaxSamples > 0 {
		return p.MaxSamples
	}
	return infer.DefaultMaxSamples
}

func (p *Pipeline) tolerance() float64 {
	if p.Tolerance > 0 {
		return p.Tolerance
	}
	return consolidate.DefaultTolerance
}

func (p *Pipeline) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return defaultWorkers
}

func (p *Pipeline) table() string {
	if p.Table != "" {
		return p.Table
	}
	return DefaultTable
}

func (p *Pipeline) batchSize() int {
	if p.BatchSize > 0 {
		return p.BatchSize
	}
	return defaultBatchSize
}
