package ingest

// validate.go applies the mandatory-field contract to one normalized row.
// A row is accepted only when every mandatory field mapped to a column and
// normalized to a valid value; a single mandatory failure rejects the whole
// row, because downstream consumers assume all mandatory attributes are
// populated. Optional failures degrade to warnings and defaults.

import (
	"fmt"
	"strconv"
)

// Row is one accepted, normalized inventory record ready for persistence.
// Defaulted lists the fields whose values were back-filled rather than read
// from the file; the substitution is auditable, never silent.
type Row struct {
	Number    int
	Values    map[Field]string
	Carats    float64
	Defaulted []Field
}

// StockNumber returns the row's stock identifier, synthetic or file-supplied.
func (r Row) StockNumber() string { return r.Values[FieldStockNumber] }

// persistenceDefaults are the optional fields the storage contract requires,
// back-filled deterministically when the file omits them.
var persistenceDefaults = []struct {
	field Field
	value string
}{
	{FieldPolish, DefaultPolish},
	{FieldSymmetry, DefaultSymmetry},
	{FieldDepthPercent, DefaultDepthPercent},
	{FieldTablePercent, DefaultTablePercent},
}

// mandatorySet returns the mandatory fields for one submission: the fixed
// registry set, plus the stock identifier when the file declared a stock
// column. A file that names a stock column but leaves cells empty is
// supplying broken keys, not omitting the concept.
func mandatorySet(mapped map[Field]bool) []Field {
	out := MandatoryFields()
	if mapped[FieldStockNumber] {
		out = append(out, FieldStockNumber)
	}
	return out
}

// processRow normalizes and validates one raw row. rowNum is 1-indexed with
// the header excluded. syntheticBase seeds synthetic stock numbers so a
// whole submission shares one timestamp prefix.
//
// Returns the normalized row, the row's errors and warnings, and whether the
// row was accepted. Rejected rows still return their collected errors.
func processRow(rowNum int, cells []string, mappings []HeaderMapping, mandatory []Field, syntheticBase int64) (Row, []RowError, bool) {
	row := Row{Number: rowNum, Values: make(map[Field]string, len(mappings))}

	var errs []RowError
	accepted := true

	results := make(map[Field]FieldResult, len(mappings))
	for i, m := range mappings {
		if !m.Mapped() || i >= len(cells) {
			continue
		}
		// Two columns mapping to one field keeps the leftmost.
		if _, seen := results[m.Field]; seen {
			continue
		}
		results[m.Field] = NormalizeValue(m.Field, cells[i])
	}

	for _, f := range mandatory {
		res, present := results[f]
		if present && res.Valid {
			row.Values[f] = res.Value
			continue
		}
		accepted = false
		re := RowError{Row: rowNum, Field: string(f), Severity: SeverityError}
		if present {
			re.Reason = res.Reason
			re.Value = rawCell(f, mappings, cells)
		} else {
			re.Reason = fmt.Sprintf("Missing mandatory field: %s", f)
		}
		errs = append(errs, re)
	}

	mandatoryFields := make(map[Field]bool, len(mandatory))
	for _, f := range mandatory {
		mandatoryFields[f] = true
	}

	handled := make(map[Field]bool, len(mappings))
	for i, m := range mappings {
		if !m.Mapped() || mandatoryFields[m.Field] || i >= len(cells) || handled[m.Field] {
			continue
		}
		handled[m.Field] = true
		res := results[m.Field]
		if res.Valid {
			row.Values[m.Field] = res.Value
			continue
		}
		if cells[i] == "" {
			continue
		}
		// Optional fields never block the row. Grade fields degrade to a
		// default; everything else is recorded as a warning and dropped.
		errs = append(errs, RowError{
			Row:      rowNum,
			Field:    string(m.Field),
			Value:    cells[i],
			Reason:   res.Reason,
			Severity: SeverityWarning,
		})
		switch m.Field {
		case FieldCut:
			row.Values[m.Field] = DefaultCutGrade
			row.Defaulted = append(row.Defaulted, m.Field)
		case FieldPolish:
			row.Values[m.Field] = DefaultPolish
			row.Defaulted = append(row.Defaulted, m.Field)
		case FieldSymmetry:
			row.Values[m.Field] = DefaultSymmetry
			row.Defaulted = append(row.Defaulted, m.Field)
		}
	}

	if !accepted {
		return row, errs, false
	}

	if w, err := strconv.ParseFloat(row.Values[FieldWeight], 64); err == nil {
		row.Carats = w
	}

	if row.Values[FieldStockNumber] == "" {
		row.Values[FieldStockNumber] = syntheticStockNumber(syntheticBase, rowNum)
		row.Defaulted = append(row.Defaulted, FieldStockNumber)
	}
	for _, d := range persistenceDefaults {
		if row.Values[d.field] == "" {
			row.Values[d.field] = d.value
			row.Defaulted = append(row.Defaulted, d.field)
		}
	}

	return row, errs, true
}

// syntheticStockNumber derives a deterministic stock identifier from the
// submission timestamp and the source row number.
func syntheticStockNumber(base int64, rowNum int) string {
	return fmt.Sprintf("STK-%d-%d", base, rowNum)
}

// rawCell returns the raw value of the first column mapped to f.
func rawCell(f Field, mappings []HeaderMapping, cells []string) string {
	for i, m := range mappings {
		if m.Field == f && i < len(cells) {
			return cells[i]
		}
	}
	return ""
}
