package ingest

// vocab.go holds the controlled vocabularies and alias tables used by field
// normalization. Aliases cover industry abbreviations ("RB", "OV", "VVS"),
// lab shorthand, and the Hebrew terms that show up in exports from
// Ramat Gan trading-floor software.

import "strings"

// DefaultShape is substituted for unresolved shapes in optional contexts.
// Mandatory shape resolution never falls back to it.
const (
	DefaultShape     = "round brilliant"
	DefaultShapeCode = "BR"
)

// Deterministic constants back-filled for persistence-required fields the
// file did not supply. Substitution is recorded per row, never silent.
const (
	DefaultCutGrade     = "GOOD"
	DefaultPolish       = "GOOD"
	DefaultSymmetry     = "GOOD"
	DefaultDepthPercent = "62.0"
	DefaultTablePercent = "58.0"
)

// canonicalShapes is the controlled shape vocabulary.
var canonicalShapes = []string{
	"round brilliant",
	"oval",
	"cushion",
	"pear",
	"emerald",
	"asscher",
	"radiant",
	"marquise",
	"heart",
	"princess",
	"baguette",
	"trilliant",
}

// shapeAliases maps abbreviations and multi-language shape names to the
// canonical vocabulary. Keys are lowercase.
var shapeAliases = map[string]string{
	"rb":         "round brilliant",
	"rbc":        "round brilliant",
	"br":         "round brilliant",
	"round":      "round brilliant",
	"brilliant":  "round brilliant",
	"rd":         "round brilliant",
	"ov":         "oval",
	"ovl":        "oval",
	"cu":         "cushion",
	"cus":        "cushion",
	"cb":         "cushion",
	"ps":         "pear",
	"pe":         "pear",
	"pear shape": "pear",
	"em":         "emerald",
	"emr":        "emerald",
	"ec":         "emerald",
	"as":         "asscher",
	"asch":       "asscher",
	"sq em":      "asscher",
	"rad":        "radiant",
	"ra":         "radiant",
	"mq":         "marquise",
	"mar":        "marquise",
	"mqb":        "marquise",
	"hs":         "heart",
	"ht":         "heart",
	"pr":         "princess",
	"prin":       "princess",
	"pc":         "princess",
	"bag":        "baguette",
	"bg":         "baguette",
	"tr":         "trilliant",
	"tri":        "trilliant",

	// Hebrew trade terms.
	"עגול":   "round brilliant",
	"אובל":   "oval",
	"קושן":   "cushion",
	"אגס":    "pear",
	"אמרלד":  "emerald",
	"מרקיזה": "marquise",
	"לב":     "heart",
	"פרינסס": "princess",
	"רדיאנט": "radiant",
	"בגט":    "baguette",
}

// colorGrades is the D-to-N grading scale. Letters beyond N collapse into
// the O-Z band.
var colorGrades = []string{"D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N"}

const colorBandOZ = "O-Z"

// clarityGrades is the standard clarity scale in descending order.
var clarityGrades = []string{
	"FL", "IF", "VVS1", "VVS2", "VS1", "VS2", "SI1", "SI2", "SI3", "I1", "I2", "I3",
}

// cutGrades is the controlled vocabulary shared by cut, polish and symmetry.
var cutGrades = []string{"EXCELLENT", "VERY GOOD", "GOOD", "FAIR", "POOR"}

// cutAliases maps grade abbreviations to the controlled vocabulary.
var cutAliases = map[string]string{
	"ex":      "EXCELLENT",
	"exc":     "EXCELLENT",
	"x":       "EXCELLENT",
	"ideal":   "EXCELLENT",
	"id":      "EXCELLENT",
	"vg":      "VERY GOOD",
	"v good":  "VERY GOOD",
	"very gd": "VERY GOOD",
	"gd":      "GOOD",
	"g":       "GOOD",
	"fr":      "FAIR",
	"f":       "FAIR",
	"pr":      "POOR",
	"p":       "POOR",
}

// fluorescenceGrades is the controlled fluorescence vocabulary.
var fluorescenceGrades = []string{"NONE", "FAINT", "MEDIUM", "STRONG", "VERY STRONG"}

// fluorescenceAliases maps single letters and report shorthand to grades.
var fluorescenceAliases = map[string]string{
	"n":            "NONE",
	"non":          "NONE",
	"nil":          "NONE",
	"no":           "NONE",
	"f":            "FAINT",
	"fnt":          "FAINT",
	"faint slight": "FAINT",
	"sl":           "FAINT",
	"slight":       "FAINT",
	"m":            "MEDIUM",
	"med":          "MEDIUM",
	"mb":           "MEDIUM",
	"s":            "STRONG",
	"st":           "STRONG",
	"stg":          "STRONG",
	"str":          "STRONG",
	"sb":           "STRONG",
	"vs":           "VERY STRONG",
	"vst":          "VERY STRONG",
	"vstg":         "VERY STRONG",
	"very str":     "VERY STRONG",
}

// labs is the recognized grading-lab vocabulary.
var labs = []string{"GIA", "IGI", "HRD", "EGL", "GSI", "GCAL", "AGS", "NONE"}

// labAliases maps long-form lab names to their acronyms.
var labAliases = map[string]string{
	"gemological institute of america":    "GIA",
	"international gemological institute": "IGI",
	"hoge raad voor diamant":              "HRD",
	"european gemological laboratory":     "EGL",
	"no cert":                             "NONE",
	"none":                                "NONE",
	"uncertified":                         "NONE",
}

// lookupEnum resolves raw against a vocabulary first (case-insensitive),
// then an alias table. Returns the canonical value and whether it resolved.
func lookupEnum(raw string, vocab []string, aliases map[string]string) (string, bool) {
	cleaned := strings.TrimSpace(raw)
	for _, v := range vocab {
		if strings.EqualFold(cleaned, v) {
			return v, true
		}
	}
	if aliases != nil {
		if v, ok := aliases[strings.ToLower(cleaned)]; ok {
			return v, true
		}
	}
	return "", false
}
