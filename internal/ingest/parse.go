package ingest

// parse.go turns raw file bytes into an ordered header list and raw rows.
//
// Format is selected by extension: .xlsx/.xls decode through excelize,
// anything else is treated as delimited text with the delimiter auto-detected
// among comma, semicolon and tab. Legacy encodings are handled before the
// CSV reader sees the bytes: UTF-8 BOM stripped, UTF-16 decoded, and
// non-UTF-8 single-byte data decoded as Windows-1255 (Hebrew trading-floor
// exports are the common case; the Latin range is unaffected).

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Table is the parser output: the header row and every data row, in file
// order. Rows are padded or truncated to the header's column count.
type Table struct {
	Headers []string
	Rows    [][]string
}

// delimiter candidates in preference order; ties go to the earliest.
var delimiters = []rune{',', ';', '\t'}

// Parse decodes file bytes into a Table. It is a pure function over the
// input; the filename is only consulted for its extension.
func Parse(data []byte, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return parseSpreadsheet(data)
	default:
		return parseDelimited(data)
	}
}

// parseSpreadsheet decodes the first sheet of an Excel workbook.
func parseSpreadsheet(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", ErrUnreadableFile)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return tableFromRecords(rows)
}

// parseDelimited decodes CSV/TSV/semicolon-separated text.
func parseDelimited(data []byte) (*Table, error) {
	decoded, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	headerLine, ok := firstNonEmptyLine(decoded)
	if !ok {
		return nil, ErrEmptyFile
	}

	delim := detectDelimiter(headerLine)

	r := csv.NewReader(strings.NewReader(decoded))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited text: %w", err)
	}

	return tableFromRecords(records)
}

// tableFromRecords shapes raw records into a Table: the first non-empty
// record is the header, later records are padded/truncated to its width,
// and fully empty records are skipped rather than counted as data rows.
func tableFromRecords(records [][]string) (*Table, error) {
	start := -1
	for i, rec := range records {
		if !isEmptyRecord(rec) {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, ErrEmptyFile
	}

	headers := make([]string, len(records[start]))
	for i, h := range records[start] {
		headers[i] = strings.TrimSpace(h)
	}

	var rows [][]string
	for _, rec := range records[start+1:] {
		if isEmptyRecord(rec) {
			continue
		}
		row := make([]string, len(headers))
		for i := range row {
			if i < len(rec) {
				row[i] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

// detectDelimiter parses the header line with each candidate delimiter and
// picks the one yielding the most columns. Comma wins ties by candidate
// order.
func detectDelimiter(headerLine string) rune {
	best := delimiters[0]
	bestCols := 0

	for _, d := range delimiters {
		r := csv.NewReader(strings.NewReader(headerLine))
		r.Comma = d
		r.LazyQuotes = true
		fields, err := r.Read()
		if err != nil {
			continue
		}
		if len(fields) > bestCols {
			bestCols = len(fields)
			best = d
		}
	}

	return best
}

// decodeText converts raw bytes to UTF-8 text: BOM-aware UTF-16 handling,
// UTF-8 passthrough, Windows-1255 fallback for legacy single-byte data.
func decodeText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}

	// UTF-8 BOM from Windows exports.
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := io.ReadAll(dec.Reader(bytes.NewReader(data)))
		if err != nil {
			return "", fmt.Errorf("decode utf-16: %w", ErrUnreadableFile)
		}
		return string(out), nil
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	out, err := io.ReadAll(charmap.Windows1255.NewDecoder().Reader(bytes.NewReader(data)))
	if err != nil {
		return "", fmt.Errorf("decode windows-1255: %w", ErrUnreadableFile)
	}
	return string(out), nil
}

// firstNonEmptyLine returns the first line containing non-whitespace text.
func firstNonEmptyLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimSuffix(line, "\r"), true
		}
	}
	return "", false
}

func isEmptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
