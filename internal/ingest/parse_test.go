package ingest

import (
	"errors"
	"testing"
)

func TestParse_CommaDelimited(t *testing.T) {
	data := []byte("shape,weight,color\nRB,1.05,G\nOV,2.00,H\n")

	table, err := Parse(data, "inventory.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := len(table.Headers); got != 3 {
		t.Fatalf("len(Headers) = %d, want 3", got)
	}
	if table.Headers[0] != "shape" {
		t.Errorf("Headers[0] = %q, want %q", table.Headers[0], "shape")
	}
	if got := len(table.Rows); got != 2 {
		t.Fatalf("len(Rows) = %d, want 2", got)
	}
	if table.Rows[1][1] != "2.00" {
		t.Errorf("Rows[1][1] = %q, want %q", table.Rows[1][1], "2.00")
	}
}

func TestParse_DelimiterDetection(t *testing.T) {
	tests := []struct {
		name string
		data string
		cols int
	}{
		{"semicolon", "shape;weight;color\nRB;1.05;G\n", 3},
		{"tab", "shape\tweight\tcolor\nRB\t1.05\tG\n", 3},
		{"comma wins ties", "shape\nRB\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse([]byte(tt.data), "file.txt")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := len(table.Headers); got != tt.cols {
				t.Errorf("len(Headers) = %d, want %d", got, tt.cols)
			}
		})
	}
}

func TestParse_RaggedRows(t *testing.T) {
	// Short rows pad, long rows truncate, all-empty rows are skipped.
	data := []byte("shape,weight,color\nRB,1.05\nOV,2.00,H,extra\n,,\n")

	table, err := Parse(data, "inventory.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := len(table.Rows); got != 2 {
		t.Fatalf("len(Rows) = %d, want 2 (empty row skipped)", got)
	}
	if got := len(table.Rows[0]); got != 3 {
		t.Errorf("padded row width = %d, want 3", got)
	}
	if table.Rows[0][2] != "" {
		t.Errorf("padded cell = %q, want empty", table.Rows[0][2])
	}
	if got := len(table.Rows[1]); got != 3 {
		t.Errorf("truncated row width = %d, want 3", got)
	}
}

func TestParse_EmptyInputs(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty file", ""},
		{"whitespace only", "\n\n  \n"},
		{"header only", "shape,weight\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "file.csv")
			if !errors.Is(err, ErrEmptyFile) {
				t.Errorf("Parse() error = %v, want ErrEmptyFile", err)
			}
		})
	}
}

func TestParse_UTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("shape,weight\nRB,1.05\n")...)

	table, err := Parse(data, "export.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if table.Headers[0] != "shape" {
		t.Errorf("Headers[0] = %q, want %q (BOM must be stripped)", table.Headers[0], "shape")
	}
}

func TestParse_UTF16LE(t *testing.T) {
	text := "shape,weight\nRB,1.05\n"
	data := []byte{0xFF, 0xFE}
	for _, r := range text {
		data = append(data, byte(r), 0x00)
	}

	table, err := Parse(data, "export.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if table.Headers[1] != "weight" {
		t.Errorf("Headers[1] = %q, want %q", table.Headers[1], "weight")
	}
	if table.Rows[0][0] != "RB" {
		t.Errorf("Rows[0][0] = %q, want %q", table.Rows[0][0], "RB")
	}
}

func TestParse_Windows1255(t *testing.T) {
	// "צורה" (shape) in Windows-1255 single-byte encoding.
	data := []byte{0xF6, 0xE5, 0xF8, 0xE4}
	data = append(data, []byte(",weight\nRB,1.05\n")...)

	table, err := Parse(data, "hebrew.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if table.Headers[0] != "צורה" {
		t.Errorf("Headers[0] = %q, want %q", table.Headers[0], "צורה")
	}
}

func TestParse_QuotedCells(t *testing.T) {
	data := []byte("comment,weight\n\"has, comma\",1.05\n")

	table, err := Parse(data, "file.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if table.Rows[0][0] != "has, comma" {
		t.Errorf("Rows[0][0] = %q, want %q", table.Rows[0][0], "has, comma")
	}
}
