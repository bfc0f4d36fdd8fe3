package ingest

// report.go assembles the file-level ingestion report and its downloadable
// error table. Pure aggregation over the upstream stages' outputs.

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"
)

// Report is the complete outcome of one submission. Immutable once built;
// the caller serializes it but the pipeline never persists it.
type Report struct {
	TotalRows      int             `json:"totalRows"`
	AcceptedRows   int             `json:"acceptedRows"`
	RejectedRows   int             `json:"rejectedRows"`
	PersistedRows  int             `json:"persistedRows"`
	HeaderMappings []HeaderMapping `json:"headerMappings"`
	Errors         []RowError      `json:"errors"`
	Batches        []BatchOutcome  `json:"batches"`

	// DefaultedFields lists the back-filled fields per accepted source row.
	// Populated only under the "flag" defaults policy.
	DefaultedFields map[int][]Field `json:"defaultedFields,omitempty"`
}

// BuildReport merges the mapping set, per-row errors and batch outcomes.
// totalRows is the data-row count of the source file; accepted and rejected
// always sum to it, every row is accounted for exactly once.
func BuildReport(totalRows int, mappings []HeaderMapping, errs []RowError, accepted []Row, batches []BatchOutcome, flagDefaults bool) *Report {
	r := &Report{
		TotalRows:      totalRows,
		AcceptedRows:   len(accepted),
		RejectedRows:   totalRows - len(accepted),
		HeaderMappings: mappings,
		Errors:         sortedErrors(errs),
		Batches:        batches,
	}

	for _, b := range batches {
		r.PersistedRows += b.Persisted
	}

	if flagDefaults {
		for _, row := range accepted {
			if len(row.Defaulted) > 0 {
				if r.DefaultedFields == nil {
					r.DefaultedFields = make(map[int][]Field)
				}
				r.DefaultedFields[row.Number] = row.Defaulted
			}
		}
	}

	return r
}

// sortedErrors orders errors by source row, then field name, keeping the
// report stable regardless of worker scheduling.
func sortedErrors(errs []RowError) []RowError {
	out := make([]RowError, len(errs))
	copy(out, errs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Field < out[j].Field
	})
	return out
}

var errorCSVHeader = []string{"Row", "Column", "Value", "Error", "Severity"}

// ErrorCSV renders the error list as a flat CSV table for operator download
// and corrective re-upload. Every RowError appears as exactly one CSV row.
func (r *Report) ErrorCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(errorCSVHeader); err != nil {
		return nil, err
	}
	for _, e := range r.Errors {
		rec := []string{strconv.Itoa(e.Row), e.Field, e.Value, e.Reason, string(e.Severity)}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
