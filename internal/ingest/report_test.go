package ingest

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"
)

func TestBuildReport_Conservation(t *testing.T) {
	accepted := makeRows(3)
	errs := []RowError{
		{Row: 2, Field: "weight", Value: "abc", Reason: "Invalid weight: abc", Severity: SeverityError},
		{Row: 5, Field: "color", Value: "AB", Reason: "Invalid color: AB", Severity: SeverityError},
	}
	batches := []BatchOutcome{{Index: 1, Attempted: 3, Persisted: 3}}

	r := BuildReport(5, nil, errs, accepted, batches, false)

	if r.TotalRows != 5 {
		t.Errorf("TotalRows = %d, want 5", r.TotalRows)
	}
	if r.AcceptedRows+r.RejectedRows != r.TotalRows {
		t.Errorf("accepted %d + rejected %d != total %d",
			r.AcceptedRows, r.RejectedRows, r.TotalRows)
	}
	if r.AcceptedRows != 3 || r.RejectedRows != 2 {
		t.Errorf("accepted/rejected = %d/%d, want 3/2", r.AcceptedRows, r.RejectedRows)
	}
	if r.PersistedRows != 3 {
		t.Errorf("PersistedRows = %d, want 3", r.PersistedRows)
	}
}

func TestBuildReport_ErrorsSorted(t *testing.T) {
	errs := []RowError{
		{Row: 9, Field: "color"},
		{Row: 2, Field: "weight"},
		{Row: 2, Field: "clarity"},
	}

	r := BuildReport(10, nil, errs, nil, nil, false)

	if r.Errors[0].Row != 2 || r.Errors[0].Field != "clarity" {
		t.Errorf("Errors[0] = %+v, want row 2 clarity", r.Errors[0])
	}
	if r.Errors[2].Row != 9 {
		t.Errorf("Errors[2].Row = %d, want 9", r.Errors[2].Row)
	}
}

func TestBuildReport_DefaultedFields(t *testing.T) {
	rows := []Row{
		{Number: 1, Values: map[Field]string{}, Defaulted: []Field{FieldStockNumber, FieldPolish}},
		{Number: 2, Values: map[Field]string{}},
	}

	flagged := BuildReport(2, nil, nil, rows, nil, true)
	if got := flagged.DefaultedFields[1]; len(got) != 2 {
		t.Errorf("DefaultedFields[1] = %v, want two fields", got)
	}
	if _, ok := flagged.DefaultedFields[2]; ok {
		t.Error("row without defaults flagged")
	}

	silent := BuildReport(2, nil, nil, rows, nil, false)
	if silent.DefaultedFields != nil {
		t.Errorf("DefaultedFields = %v under silent policy, want nil", silent.DefaultedFields)
	}
}

func TestReport_ErrorCSVRoundTrip(t *testing.T) {
	errs := []RowError{
		{Row: 2, Field: "weight", Value: "abc", Reason: "Invalid weight: abc", Severity: SeverityError},
		{Row: 4, Field: "imageUrl", Value: "not-a-url", Reason: "Invalid URL: not-a-url", Severity: SeverityWarning},
	}
	r := BuildReport(5, nil, errs, nil, nil, false)

	data, err := r.ErrorCSV()
	if err != nil {
		t.Fatalf("ErrorCSV() error = %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse error CSV: %v", err)
	}

	if got := records[0]; got[0] != "Row" || got[4] != "Severity" {
		t.Errorf("header = %v, want Row..Severity", got)
	}
	if len(records)-1 != len(r.Errors) {
		t.Fatalf("CSV rows = %d, want %d (one per RowError)", len(records)-1, len(r.Errors))
	}

	for i, e := range r.Errors {
		rec := records[i+1]
		if rec[0] != strconv.Itoa(e.Row) || rec[1] != e.Field || rec[2] != e.Value ||
			rec[3] != e.Reason || rec[4] != string(e.Severity) {
			t.Errorf("CSV row %d = %v, does not match %+v", i, rec, e)
		}
	}
}
