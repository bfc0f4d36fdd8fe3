package ingest

// match.go maps raw spreadsheet headers to canonical fields with a lenient
// similarity heuristic. False positives are tolerated: value normalization
// re-validates every cell, and the mandatory-column check is an independent
// second gate. The scoring function is pure so the alias registry can grow
// without touching the pipeline.

import "strings"

// Score thresholds for header matching.
const (
	// acceptThreshold is the minimum score for a header to map at all.
	acceptThreshold = 0.2

	// overlapFloor gates the positional-overlap fallback; weaker overlap
	// scores zero instead of producing noise mappings.
	overlapFloor = 0.4

	containmentWeight = 0.9
	overlapWeight     = 0.6
)

// HeaderMapping associates one raw header with a canonical field. Field is
// empty and Confidence zero for unmapped headers.
type HeaderMapping struct {
	Header     string  `json:"header"`
	Field      Field   `json:"field"`
	Confidence float64 `json:"confidence"`
}

// Mapped reports whether the header resolved to a canonical field.
func (m HeaderMapping) Mapped() bool { return m.Field != "" }

// MapHeaders scores every header against every alias in the registry and
// returns one mapping per header, in header order. Deterministic: the
// registry is iterated in declaration order and only a strictly greater
// score displaces the current best, so the first field to reach the best
// score wins ties.
func MapHeaders(headers []string) []HeaderMapping {
	out := make([]HeaderMapping, len(headers))
	for i, h := range headers {
		out[i] = mapHeader(h)
	}
	return out
}

func mapHeader(header string) HeaderMapping {
	norm := normalizeHeader(header)

	var (
		bestField Field
		bestScore float64
	)
	for _, spec := range registry {
		for _, alias := range spec.Aliases {
			s := scoreMatch(norm, normalizeHeader(alias))
			if s > bestScore {
				bestScore = s
				bestField = spec.Field
			}
		}
	}

	if bestScore < acceptThreshold {
		return HeaderMapping{Header: header}
	}
	return HeaderMapping{Header: header, Field: bestField, Confidence: bestScore}
}

// normalizeHeader lowercases and strips everything that is not a letter or
// digit. Unicode letters survive so Hebrew aliases compare correctly.
func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if isLetterOrDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isLetterOrDigit(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r > 127:
		// Non-ASCII: keep letters, drop symbols. A cheap check suffices
		// for header text.
		return !strings.ContainsRune(" \t.,;:!?()[]{}<>/\\|\"'`~@#$%^&*-_=+", r)
	default:
		return false
	}
}

// scoreMatch compares two normalized strings:
//
//	exact match            1.0
//	substring containment  shorter/longer length ratio, weighted 0.9
//	positional overlap     shared-position character ratio over the longer
//	                       length, weighted 0.6, zero below the floor
func scoreMatch(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		ratio := lengthRatio(a, b)
		return ratio * containmentWeight
	}

	overlap := positionalOverlap(a, b)
	if overlap < overlapFloor {
		return 0
	}
	return overlap * overlapWeight
}

// lengthRatio is shorter length over longer length, always in (0, 1].
func lengthRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}

// positionalOverlap counts positions where both strings carry the same rune,
// divided by the longer string's length.
func positionalOverlap(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	shorter, longer := ra, rb
	if len(rb) < len(ra) {
		shorter, longer = rb, ra
	}

	matches := 0
	for i := range shorter {
		if shorter[i] == longer[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(longer))
}

// MappedFields returns the set of canonical fields present in a mapping set.
func MappedFields(mappings []HeaderMapping) map[Field]bool {
	out := make(map[Field]bool, len(mappings))
	for _, m := range mappings {
		if m.Mapped() {
			out[m.Field] = true
		}
	}
	return out
}

// UnmappedHeaders returns the raw headers that resolved to no field.
func UnmappedHeaders(mappings []HeaderMapping) []string {
	var out []string
	for _, m := range mappings {
		if !m.Mapped() {
			out = append(out, m.Header)
		}
	}
	return out
}
