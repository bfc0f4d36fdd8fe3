package ingest

import (
	"reflect"
	"testing"
)

func TestMapHeaders_ExactAndAlias(t *testing.T) {
	tests := []struct {
		header string
		field  Field
	}{
		{"Shape", FieldShape},
		{"Carat", FieldWeight},
		{"ct", FieldWeight},
		{"Colour", FieldColor},
		{"CLARITY", FieldClarity},
		{"Fluor", FieldFluorescence},
		{"Cert Number", FieldCertNumber},
		{"Stock #", FieldStockNumber},
		{"Image URL", FieldImageURL},
		{"צורה", FieldShape},
		{"משקל", FieldWeight},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got := MapHeaders([]string{tt.header})[0]
			if got.Field != tt.field {
				t.Errorf("MapHeaders(%q).Field = %q, want %q (confidence %v)",
					tt.header, got.Field, tt.field, got.Confidence)
			}
		})
	}
}

func TestMapHeaders_CaratConfidence(t *testing.T) {
	got := MapHeaders([]string{"Carat"})[0]
	if got.Field != FieldWeight {
		t.Fatalf("Field = %q, want %q", got.Field, FieldWeight)
	}
	if got.Confidence < 0.7 {
		t.Errorf("Confidence = %v, want >= 0.7", got.Confidence)
	}
}

func TestMapHeaders_ContainmentScore(t *testing.T) {
	// "Carat Weight" normalizes to "caratweight"; the alias "weight" is
	// contained, scoring 6/11 * 0.9.
	got := MapHeaders([]string{"Carat Weight"})[0]
	if got.Field != FieldWeight {
		t.Fatalf("Field = %q, want %q", got.Field, FieldWeight)
	}
	want := 6.0 / 11.0 * 0.9
	if diff := got.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Confidence = %v, want %v", got.Confidence, want)
	}
}

func TestMapHeaders_Unmapped(t *testing.T) {
	got := MapHeaders([]string{"yyy12345"})[0]
	if got.Mapped() {
		t.Errorf("header %q mapped to %q (%v), want unmapped",
			got.Header, got.Field, got.Confidence)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", got.Confidence)
	}
}

func TestMapHeaders_Deterministic(t *testing.T) {
	headers := []string{"Shape", "Carat Weight", "Colour", "Clarity", "Fluo", "Cert", "yyy12345"}

	first := MapHeaders(headers)
	for i := 0; i < 10; i++ {
		if got := MapHeaders(headers); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced different mappings:\n got %+v\nwant %+v", i, got, first)
		}
	}
}

func TestScoreMatch(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"exact", "shape", "shape", 1.0},
		{"containment", "caratweight", "weight", 6.0 / 11.0 * 0.9},
		{"overlap below floor", "abc", "xyz", 0},
		{"empty", "", "shape", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreMatch(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("scoreMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestScoreMatch_PositionalOverlap(t *testing.T) {
	// "colr" vs "color": c, o, l match positionally; 3/5 = 0.6 passes the
	// floor and scales by 0.6.
	got := scoreMatch("colr", "color")
	want := 0.6 * 0.6
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("scoreMatch = %v, want %v", got, want)
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Stock No.", "stockno"},
		{"PRICE/CARAT", "pricecarat"},
		{"  weight  ", "weight"},
		{"צורה", "צורה"},
	}

	for _, tt := range tests {
		if got := normalizeHeader(tt.in); got != tt.want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
