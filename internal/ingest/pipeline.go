package ingest

// pipeline.go runs the whole submission: parse, map headers, normalize and
// validate rows on a bounded worker pool, persist accepted rows in batches,
// and assemble the report. Stages hand values forward; nothing mutable is
// shared across stages while a stage is running.

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Options tunes one pipeline run. The zero value is usable.
type Options struct {
	// BatchSize overrides the persistence batch size. Zero means
	// DefaultBatchSize.
	BatchSize int

	// FlagDefaults surfaces back-filled field values in the report instead
	// of persisting them silently.
	FlagDefaults bool

	// Workers bounds the row normalization pool. Zero means GOMAXPROCS.
	Workers int

	// OnBatch, when set, is called after every persisted batch.
	OnBatch BatchProgressFunc

	// OnPhase, when set, is called as the run enters each pipeline stage.
	OnPhase func(Phase)

	// now is overridable for deterministic synthetic stock numbers in tests.
	now func() time.Time
}

// rowVerdict is one worker's output, indexed by source row.
type rowVerdict struct {
	row      Row
	errs     []RowError
	accepted bool
}

// Run executes the full pipeline for one submitted file. Row-level problems
// land in the report, never in the error return; only file-level fatal
// conditions and context cancellation surface as errors. On cancellation
// during persistence the partial report is returned alongside the context's
// error, reflecting what actually persisted.
func Run(ctx context.Context, store Upserter, owner string, data []byte, filename string, opts Options) (*Report, error) {
	phase := func(p Phase) {
		if opts.OnPhase != nil {
			opts.OnPhase(p)
		}
	}

	phase(PhaseParsing)
	table, err := Parse(data, filename)
	if err != nil {
		return nil, err
	}

	phase(PhaseMapping)
	mappings := MapHeaders(table.Headers)
	mapped := MappedFields(mappings)

	anyMandatory := false
	for _, f := range MandatoryFields() {
		if mapped[f] {
			anyMandatory = true
			break
		}
	}
	if !anyMandatory {
		return nil, ErrMissingMandatoryColumns
	}

	mandatory := mandatorySet(mapped)

	now := time.Now
	if opts.now != nil {
		now = opts.now
	}
	syntheticBase := now().UnixMilli()

	// Rows are independent, so normalization and validation fan out across
	// a bounded pool. Each worker writes only its own verdict slot, which
	// keeps collection order deterministic without locks.
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	phase(PhaseValidating)
	verdicts := make([]rowVerdict, len(table.Rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cells := range table.Rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, errs, ok := processRow(i+1, cells, mappings, mandatory, syntheticBase)
			verdicts[i] = rowVerdict{row: row, errs: errs, accepted: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		accepted []Row
		rowErrs  []RowError
	)
	for _, v := range verdicts {
		rowErrs = append(rowErrs, v.errs...)
		if v.accepted {
			accepted = append(accepted, v.row)
		}
	}

	phase(PhasePersisting)
	batches, persistErr := PersistBatches(ctx, store, owner, accepted, opts.BatchSize, opts.OnBatch)

	report := BuildReport(len(table.Rows), mappings, rowErrs, accepted, batches, opts.FlagDefaults)
	return report, persistErr
}
