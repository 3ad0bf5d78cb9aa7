package models

import "strings"

// RecordKind names the two kinds of monitored records in the external store.
type RecordKind string

const (
	KindProperty RecordKind = "properties"
	KindWell     RecordKind = "wells"
)

// Field names used in the external record store.
const (
	FieldSection   = "SEC"
	FieldTownship  = "TWN"
	FieldRange     = "RNG"
	FieldMeridian  = "MERIDIAN"
	FieldCounty    = "COUNTY"
	FieldAPINumber = "API_NUMBER"
	FieldName      = "NAME"
	FieldNotes     = "NOTES"

	// Enrichment fields populated from the well registry.
	FieldWellName  = "WELL_NAME"
	FieldOperator  = "OPERATOR"
	FieldStatus    = "STATUS"
	FieldLatitude  = "LAT"
	FieldLongitude = "LON"
	FieldLocation  = "LOCATION"
)

// Meridians referenced by Oklahoma legal descriptions.
const (
	MeridianIndian   = "IM"
	MeridianCimarron = "CM"
)

// PlanLimits is the record ceiling pair for one subscription tier.
// A value of -1 means unbounded.
type PlanLimits struct {
	MaxProperties int `json:"max_properties"`
	MaxWells      int `json:"max_wells"`
}

func (p PlanLimits) For(kind RecordKind) int {
	if kind == KindWell {
		return p.MaxWells
	}
	return p.MaxProperties
}

// LegalDescription is a canonical Township-Range-Section-Meridian tuple.
type LegalDescription struct {
	Section  string `json:"section"`  // zero-padded, e.g. "03"
	Township string `json:"township"` // e.g. "12N"
	Range    string `json:"range"`    // e.g. "4W"
	Meridian string `json:"meridian"` // "IM" or "CM"
	County   string `json:"county"`
}

// Key is the composite identity of a legal description. Duplicate detection
// always runs against this key, never against raw input.
func (l LegalDescription) Key() string {
	return l.Section + "|" + l.Township + "|" + l.Range + "|" + l.Meridian
}

// WellIdentifier is a canonical 10-digit API number plus display fields.
type WellIdentifier struct {
	APINumber string `json:"api_number"`
	Name      string `json:"name"`
	Notes     string `json:"notes"`
}

func (w WellIdentifier) Key() string {
	return w.APINumber
}

// PropertyKey projects a normalized field map onto the composite TRS key.
// Records missing any key part have no identity and return "".
func PropertyKey(fields map[string]string) string {
	parts := []string{fields[FieldSection], fields[FieldTownship], fields[FieldRange], fields[FieldMeridian]}
	for _, p := range parts {
		if p == "" {
			return ""
		}
	}
	return strings.Join(parts, "|")
}

// WellKey projects a normalized field map onto the well identity key.
func WellKey(fields map[string]string) string {
	return fields[FieldAPINumber]
}

// RecordKey dispatches on kind.
func RecordKey(kind RecordKind, fields map[string]string) string {
	if kind == KindWell {
		return WellKey(fields)
	}
	return PropertyKey(fields)
}
