// Package ingest implements the bulk inventory ingestion pipeline: it turns
// inconsistently formatted spreadsheet exports (CSV/TSV/XLSX, mixed languages,
// mixed header dialects) into validated, normalized gemstone inventory records
// with per-row accept/reject decisions and an auditable ingestion report.
// The package has no UI dependencies and can be driven by any frontend.
package ingest

// Field identifies one canonical attribute of a gemstone inventory record.
type Field string

const (
	FieldShape          Field = "shape"
	FieldWeight         Field = "weight"
	FieldColor          Field = "color"
	FieldClarity        Field = "clarity"
	FieldCut            Field = "cut"
	FieldPolish         Field = "polish"
	FieldSymmetry       Field = "symmetry"
	FieldFluorescence   Field = "fluorescence"
	FieldLab            Field = "lab"
	FieldCertNumber     Field = "certificateNumber"
	FieldStockNumber    Field = "stockNumber"
	FieldPricePerCarat  Field = "pricePerCarat"
	FieldTotalPrice     Field = "totalPrice"
	FieldDiscount       Field = "discount"
	FieldDepthPercent   Field = "depthPercent"
	FieldTablePercent   Field = "tablePercent"
	FieldMeasurements   Field = "measurements"
	FieldGirdle         Field = "girdle"
	FieldCulet          Field = "culet"
	FieldFancyColor     Field = "fancyColor"
	FieldFancyIntensity Field = "fancyIntensity"
	FieldOrigin         Field = "origin"
	FieldTreatment      Field = "treatment"
	FieldLocation       Field = "location"
	FieldAvailability   Field = "availability"
	FieldImageURL       Field = "imageUrl"
	FieldVideoURL       Field = "videoUrl"
	FieldCertURL        Field = "certificateUrl"
	FieldComment        Field = "comment"
)

// Kind selects the normalization rule applied to a field's raw value.
type Kind int

const (
	KindText Kind = iota
	KindEnum
	KindDecimal
	KindURL
)

// FieldSpec describes one canonical field: its known header aliases
// (case- and punctuation-insensitive, multi-language), whether a valid
// value is required for the row to be accepted, and how raw cell values
// are normalized.
type FieldSpec struct {
	Field     Field
	Aliases   []string
	Mandatory bool
	Kind      Kind
}

// registry is the fixed, ordered list of canonical fields. Header mapping
// iterates this slice in declaration order, which makes tie-breaks between
// equally scoring fields deterministic: the first field to reach the best
// score wins. Do not reorder casually.
var registry = []FieldSpec{
	{
		Field:     FieldShape,
		Aliases:   []string{"shape", "shp", "cut shape", "form", "צורה"},
		Mandatory: true,
		Kind:      KindEnum,
	},
	{
		Field:     FieldWeight,
		Aliases:   []string{"weight", "carat", "carats", "ct", "ct weight", "size", "משקל", "קראט"},
		Mandatory: true,
		Kind:      KindDecimal,
	},
	{
		Field:     FieldColor,
		Aliases:   []string{"color", "colour", "col", "צבע"},
		Mandatory: true,
		Kind:      KindEnum,
	},
	{
		Field:     FieldClarity,
		Aliases:   []string{"clarity", "clar", "purity", "quality", "ניקיון"},
		Mandatory: true,
		Kind:      KindEnum,
	},
	{
		Field:   FieldCut,
		Aliases: []string{"cut", "cut grade", "make", "ליטוש"},
		Kind:    KindEnum,
	},
	{
		Field:   FieldPolish,
		Aliases: []string{"polish", "pol", "פוליש"},
		Kind:    KindEnum,
	},
	{
		Field:   FieldSymmetry,
		Aliases: []string{"symmetry", "sym", "symm", "סימטריה"},
		Kind:    KindEnum,
	},
	{
		Field:     FieldFluorescence,
		Aliases:   []string{"fluorescence", "fluor", "fluo", "fl", "fluorescence intensity", "פלורסנציה"},
		Mandatory: true,
		Kind:      KindEnum,
	},
	{
		Field:   FieldLab,
		Aliases: []string{"lab", "laboratory", "grading lab", "cert lab", "מעבדה"},
		Kind:    KindEnum,
	},
	{
		Field:     FieldCertNumber,
		Aliases:   []string{"certificate number", "cert number", "cert no", "cert", "certificate", "report number", "report no", "certificate id", "מספר תעודה", "תעודה"},
		Mandatory: true,
		Kind:      KindText,
	},
	{
		Field:   FieldStockNumber,
		Aliases: []string{"stock number", "stock no", "stock id", "stock", "sku", "item number", "item id", "lot number", "ref", "reference", "מספר מלאי", "מלאי"},
		Kind:    KindText,
	},
	{
		Field:   FieldPricePerCarat,
		Aliases: []string{"price per carat", "price/carat", "ppc", "price ct", "per carat", "מחיר לקראט"},
		Kind:    KindDecimal,
	},
	{
		Field:   FieldTotalPrice,
		Aliases: []string{"total price", "price", "total", "amount", "מחיר"},
		Kind:    KindDecimal,
	},
	{
		Field:   FieldDiscount,
		Aliases: []string{"discount", "disc", "rap percent", "rapnet discount", "percent off", "הנחה"},
		Kind:    KindDecimal,
	},
	{
		Field:   FieldDepthPercent,
		Aliases: []string{"depth", "depth percent", "depth pct", "total depth", "עומק"},
		Kind:    KindDecimal,
	},
	{
		Field:   FieldTablePercent,
		Aliases: []string{"table", "table percent", "table pct", "טבלה"},
		Kind:    KindDecimal,
	},
	{
		Field:   FieldMeasurements,
		Aliases: []string{"measurements", "meas", "dimensions", "mm", "מידות"},
		Kind:    KindText,
	},
	{
		Field:   FieldGirdle,
		Aliases: []string{"girdle", "girdle thickness", "חגורה"},
		Kind:    KindText,
	},
	{
		Field:   FieldCulet,
		Aliases: []string{"culet", "culet size"},
		Kind:    KindText,
	},
	{
		Field:   FieldFancyColor,
		Aliases: []string{"fancy color", "fancy colour", "fancy"},
		Kind:    KindText,
	},
	{
		Field:   FieldFancyIntensity,
		Aliases: []string{"fancy intensity", "intensity"},
		Kind:    KindText,
	},
	{
		Field:   FieldOrigin,
		Aliases: []string{"origin", "country of origin", "source", "מקור"},
		Kind:    KindText,
	},
	{
		Field:   FieldTreatment,
		Aliases: []string{"treatment", "enhancement", "treated"},
		Kind:    KindText,
	},
	{
		Field:   FieldLocation,
		Aliases: []string{"location", "city", "country", "מיקום"},
		Kind:    KindText,
	},
	{
		Field:   FieldAvailability,
		Aliases: []string{"availability", "status", "avail", "זמינות"},
		Kind:    KindText,
	},
	{
		Field:   FieldImageURL,
		Aliases: []string{"image", "image url", "image link", "photo", "picture", "diamond image", "תמונה"},
		Kind:    KindURL,
	},
	{
		Field:   FieldVideoURL,
		Aliases: []string{"video", "video url", "video link", "v360", "360", "סרטון"},
		Kind:    KindURL,
	},
	{
		Field:   FieldCertURL,
		Aliases: []string{"certificate url", "cert url", "cert link", "certificate link", "report url"},
		Kind:    KindURL,
	},
	{
		Field:   FieldComment,
		Aliases: []string{"comment", "comments", "remarks", "notes", "member comment", "הערות"},
		Kind:    KindText,
	},
}

// Specs returns the ordered canonical field registry.
func Specs() []FieldSpec {
	return registry
}

// SpecOf returns the spec for a canonical field.
// Returns false if the field is unknown.
func SpecOf(f Field) (FieldSpec, bool) {
	for _, spec := range registry {
		if spec.Field == f {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// MandatoryFields returns the fields whose absence or invalidity rejects a row.
func MandatoryFields() []Field {
	var out []Field
	for _, spec := range registry {
		if spec.Mandatory {
			out = append(out, spec.Field)
		}
	}
	return out
}
