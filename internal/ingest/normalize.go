package ingest

// normalize.go converts raw cell strings to canonical values. Normalization
// is total: every input yields a FieldResult with a validity flag, never an
// error return, so the validator applies one uniform policy across fields.

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FieldResult is the outcome of normalizing one cell. Value holds the
// canonical form when Valid; Reason explains the failure when not.
type FieldResult struct {
	Valid  bool
	Value  string
	Reason string
}

func valid(value string) FieldResult {
	return FieldResult{Valid: true, Value: value}
}

func invalid(reason string) FieldResult {
	return FieldResult{Reason: reason}
}

// NormalizeValue normalizes one raw cell for one canonical field. Unknown
// fields are treated as free text.
func NormalizeValue(f Field, raw string) FieldResult {
	raw = strings.TrimSpace(raw)

	switch f {
	case FieldShape:
		return normalizeShape(raw)
	case FieldWeight:
		return normalizePositiveDecimal(raw, "weight")
	case FieldColor:
		return normalizeColor(raw)
	case FieldClarity:
		return normalizeClarity(raw)
	case FieldCut, FieldPolish, FieldSymmetry:
		return normalizeGrade(raw)
	case FieldFluorescence:
		return normalizeFluorescence(raw)
	case FieldLab:
		return normalizeLab(raw)
	case FieldPricePerCarat, FieldTotalPrice:
		return normalizePositiveDecimal(raw, "price")
	case FieldDiscount, FieldDepthPercent, FieldTablePercent:
		return normalizeDecimal(raw)
	case FieldImageURL, FieldVideoURL, FieldCertURL:
		return normalizeURL(raw)
	default:
		return normalizeText(raw)
	}
}

func normalizeText(raw string) FieldResult {
	if raw == "" {
		return invalid("empty value")
	}
	return valid(raw)
}

func normalizeShape(raw string) FieldResult {
	if raw == "" {
		return invalid("empty shape")
	}
	if v, ok := lookupEnum(raw, canonicalShapes, shapeAliases); ok {
		return valid(v)
	}
	return invalid(fmt.Sprintf("Unknown shape: %s", raw))
}

func normalizeColor(raw string) FieldResult {
	if raw == "" {
		return invalid("empty color")
	}
	up := strings.ToUpper(raw)
	for _, g := range colorGrades {
		if up == g {
			return valid(g)
		}
	}
	// Single letters past N collapse into the O-Z band.
	if len(up) == 1 && up[0] >= 'O' && up[0] <= 'Z' {
		return valid(colorBandOZ)
	}
	if up == colorBandOZ || up == "OZ" {
		return valid(colorBandOZ)
	}
	return invalid(fmt.Sprintf("Invalid color: %s", raw))
}

func normalizeClarity(raw string) FieldResult {
	if raw == "" {
		return invalid("empty clarity")
	}
	up := strings.ToUpper(strings.ReplaceAll(raw, " ", ""))
	for _, g := range clarityGrades {
		if up == g {
			return valid(g)
		}
	}
	return invalid(fmt.Sprintf("Invalid clarity: %s", raw))
}

// normalizeGrade handles cut, polish and symmetry. These are optional fields
// so callers substitute a default on failure; the invalid result still
// records the unresolved raw value for the report.
func normalizeGrade(raw string) FieldResult {
	if raw == "" {
		return invalid("empty grade")
	}
	if v, ok := lookupEnum(raw, cutGrades, cutAliases); ok {
		return valid(v)
	}
	return invalid(fmt.Sprintf("Unknown grade: %s", raw))
}

func normalizeFluorescence(raw string) FieldResult {
	if raw == "" {
		return invalid("empty fluorescence")
	}
	if v, ok := lookupEnum(raw, fluorescenceGrades, fluorescenceAliases); ok {
		return valid(v)
	}
	return invalid(fmt.Sprintf("Invalid fluorescence: %s", raw))
}

func normalizeLab(raw string) FieldResult {
	if raw == "" {
		return invalid("empty lab")
	}
	if v, ok := lookupEnum(raw, labs, labAliases); ok {
		return valid(v)
	}
	return invalid(fmt.Sprintf("Unknown lab: %s", raw))
}

// normalizePositiveDecimal parses numbers that must be strictly positive,
// such as carat weight and prices. Currency symbols, thousands separators
// and surrounding whitespace are stripped first.
func normalizePositiveDecimal(raw, what string) FieldResult {
	if raw == "" {
		return invalid("empty " + what)
	}
	f, cleaned, err := parseDecimal(raw)
	if err != nil || f <= 0 {
		return invalid(fmt.Sprintf("Invalid %s: %s", what, raw))
	}
	return valid(cleaned)
}

func normalizeDecimal(raw string) FieldResult {
	if raw == "" {
		return invalid("empty value")
	}
	_, cleaned, err := parseDecimal(raw)
	if err != nil {
		return invalid(fmt.Sprintf("Invalid number: %s", raw))
	}
	return valid(cleaned)
}

// parseDecimal strips currency symbols, percent signs, thousands commas and
// spaces before parsing. The cleaned string is returned so stored values
// keep the submitter's precision.
func parseDecimal(raw string) (float64, string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '₪', ',', ' ', '%':
			return -1
		}
		return r
	}, raw)

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, "", err
	}
	return f, cleaned, nil
}

// normalizeURL validates link fields. Failures here surface as warnings
// downstream; URL fields never block row acceptance.
func normalizeURL(raw string) FieldResult {
	if raw == "" {
		return invalid("empty url")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalid(fmt.Sprintf("Invalid URL: %s", raw))
	}
	return valid(u.String())
}
