package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"wellwatch/internal/models"
)

// Field alias lists, in resolution priority order. The first alias present in
// a raw row wins. The canonical store field name leads each list so an
// already-normalized payload resolves to itself.
var (
	sectionAliases  = []string{"SEC", "Section", "Sec", "sec", "SECTION", "S"}
	townshipAliases = []string{"TWN", "Township", "Twp", "twp", "TOWNSHIP", "township", "T"}
	rangeAliases    = []string{"RNG", "Range", "Rng", "rng", "RANGE", "range", "R"}
	meridianAliases = []string{"MERIDIAN", "Meridian", "meridian", "Mer", "PM"}
	countyAliases   = []string{"COUNTY", "County", "county", "Cty"}
	apiAliases      = []string{"API_NUMBER", "API Number", "API number", "API #", "API", "Api", "api", "ApiNumber", "api_number"}
	nameAliases     = []string{"NAME", "Name", "name", "Well Name", "Description", "Label"}
	notesAliases    = []string{"NOTES", "Notes", "notes", "Comments", "Memo"}
)

// ResolveField returns the first alias present in the raw row with a
// non-empty value, converted to a trimmed string.
func ResolveField(row map[string]interface{}, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := row[alias]; ok {
			if s := stringValue(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringValue renders a freeform cell value as a string. JSON numbers arrive
// as float64; integral values must not pick up a decimal point.
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// NormalizeSection parses a section value ("3", "S3", "Sec 3", "Section 03")
// into a zero-padded two-digit string, or "" when no integer in 1-36 can be
// extracted.
func NormalizeSection(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	for _, prefix := range []string{"SECTION", "SEC", "S"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			break
		}
	}
	digits := firstDigitRun(s)
	if digits == "" {
		return ""
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 36 {
		return ""
	}
	return fmt.Sprintf("%02d", n)
}

var (
	trailingDirRe = regexp.MustCompile(`^(\d+)([A-Z])$`)
	leadingDirRe  = regexp.MustCompile(`^([A-Z])(\d+)$`)
)

// NormalizeTownship parses "T12N", "12N", "Township 12 N", "N12" into
// "<digits><N|S>", or "" on failure.
func NormalizeTownship(raw string) string {
	return normalizeDirectional(raw, []string{"TOWNSHIP", "TWP", "T"}, "NS")
}

// NormalizeRange parses "R4W", "4W", "Range 4 W", "W4" into "<digits><E|W>",
// or "" on failure.
func NormalizeRange(raw string) string {
	return normalizeDirectional(raw, []string{"RANGE", "RNG", "R"}, "EW")
}

func normalizeDirectional(raw string, prefixes []string, directions string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '.', '-':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return ""
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
			s = s[len(prefix):]
			break
		}
	}

	var digits, dir string
	if m := trailingDirRe.FindStringSubmatch(s); m != nil {
		digits, dir = m[1], m[2]
	} else if m := leadingDirRe.FindStringSubmatch(s); m != nil {
		digits, dir = m[2], m[1]
	} else {
		return ""
	}
	if !strings.Contains(directions, dir) {
		return ""
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return ""
	}
	return fmt.Sprintf("%d%s", n, dir)
}

// NormalizeMeridian recognizes Indian ("IM") and Cimarron ("CM") meridian
// spellings. Absent or unrecognized input defaults to IM; this never fails.
func NormalizeMeridian(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if strings.Contains(s, "CIMARRON") || s == "CM" || s == "C" {
		return models.MeridianCimarron
	}
	return models.MeridianIndian
}

// NormalizeCounty title-cases free text. No validation; empty stays empty.
func NormalizeCounty(raw string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// NormalizeAPINumber strips everything but digits ("35-015-20001" ->
// "3501520001"). Valid only when exactly 10 digits remain and they begin with
// the jurisdiction's state prefix. Invalid input comes back trimmed but
// otherwise as-is so the validator can reference the offending value.
func NormalizeAPINumber(raw, statePrefix string) (string, bool) {
	digits := digitsOnly(raw)
	if len(digits) == 10 && strings.HasPrefix(digits, statePrefix) {
		return digits, true
	}
	return strings.TrimSpace(raw), false
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstDigitRun(s string) string {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return s[start:i]
		}
	}
	if start >= 0 {
		return s[start:]
	}
	return ""
}

// PropertyCandidate is one row's resolved raw values and their canonical
// forms. A normalized field of "" means the raw value was missing or
// unparseable; the validator tells those apart via the raw fields.
type PropertyCandidate struct {
	RawSection  string
	RawTownship string
	RawRange    string
	RawMeridian string
	RawCounty   string

	Section  string
	Township string
	Range    string
	Meridian string
	County   string
	Name     string
	Notes    string
}

// NormalizeProperty resolves and normalizes one freeform row into a TRS
// candidate. Pure and idempotent: feeding the normalized fields back through
// produces the same candidate.
func NormalizeProperty(row map[string]interface{}) PropertyCandidate {
	c := PropertyCandidate{
		RawSection:  ResolveField(row, sectionAliases),
		RawTownship: ResolveField(row, townshipAliases),
		RawRange:    ResolveField(row, rangeAliases),
		RawMeridian: ResolveField(row, meridianAliases),
		RawCounty:   ResolveField(row, countyAliases),
		Name:        ResolveField(row, nameAliases),
		Notes:       ResolveField(row, notesAliases),
	}
	c.Section = NormalizeSection(c.RawSection)
	c.Township = NormalizeTownship(c.RawTownship)
	c.Range = NormalizeRange(c.RawRange)
	c.Meridian = NormalizeMeridian(c.RawMeridian)
	c.County = NormalizeCounty(c.RawCounty)
	return c
}

// Fields projects the candidate onto record store field names.
func (c PropertyCandidate) Fields() map[string]string {
	f := map[string]string{
		models.FieldSection:  c.Section,
		models.FieldTownship: c.Township,
		models.FieldRange:    c.Range,
		models.FieldMeridian: c.Meridian,
	}
	if c.County != "" {
		f[models.FieldCounty] = c.County
	}
	if c.Name != "" {
		f[models.FieldName] = c.Name
	}
	if c.Notes != "" {
		f[models.FieldNotes] = c.Notes
	}
	return f
}

// WellCandidate is one row's resolved API number and display fields.
type WellCandidate struct {
	RawAPI    string
	APINumber string
	APIValid  bool
	Name      string
	Notes     string
}

// NormalizeWell resolves and normalizes one freeform row into a well
// candidate.
func NormalizeWell(row map[string]interface{}, statePrefix string) WellCandidate {
	c := WellCandidate{
		RawAPI: ResolveField(row, apiAliases),
		Name:   ResolveField(row, nameAliases),
		Notes:  ResolveField(row, notesAliases),
	}
	c.APINumber, c.APIValid = NormalizeAPINumber(c.RawAPI, statePrefix)
	return c
}

// Fields projects the candidate onto record store field names. Invalid API
// numbers are excluded from the key field so they never form a duplicate key.
func (c WellCandidate) Fields() map[string]string {
	f := map[string]string{}
	if c.APIValid {
		f[models.FieldAPINumber] = c.APINumber
	}
	if c.Name != "" {
		f[models.FieldName] = c.Name
	}
	if c.Notes != "" {
		f[models.FieldNotes] = c.Notes
	}
	return f
}
