package service

import (
	"fmt"
)

// ValidateProperty applies the structural rules to a normalized TRS
// candidate. Errors block import; warnings never do. Validation failures are
// data, not Go errors, so a bad row can not abort a request.
func ValidateProperty(c PropertyCandidate) (errors []string, warnings []string) {
	errors = []string{}
	warnings = []string{}

	if c.RawSection == "" {
		errors = append(errors, "Section is required")
	} else if c.Section == "" {
		errors = append(errors, fmt.Sprintf("Invalid section %q (must be 1-36)", c.RawSection))
	}

	if c.RawTownship == "" {
		errors = append(errors, "Township is required")
	} else if c.Township == "" {
		errors = append(errors, fmt.Sprintf("Invalid township format %q (e.g. 12N)", c.RawTownship))
	}

	if c.RawRange == "" {
		errors = append(errors, "Range is required")
	} else if c.Range == "" {
		errors = append(errors, fmt.Sprintf("Invalid range format %q (e.g. 4W)", c.RawRange))
	}

	// A missing meridian is never an error: the normalizer defaults it.
	if c.RawMeridian == "" {
		warnings = append(warnings, "Meridian defaulted to IM")
	}

	return errors, warnings
}

// ValidateWell applies the structural rules to a normalized well candidate.
func ValidateWell(c WellCandidate, statePrefix string) (errors []string, warnings []string) {
	errors = []string{}
	warnings = []string{}

	if c.RawAPI == "" {
		errors = append(errors, "API number is required")
		return errors, warnings
	}

	if !c.APIValid {
		if digits := digitsOnly(c.RawAPI); len(digits) != 10 {
			errors = append(errors, fmt.Sprintf("API number %q must contain exactly 10 digits", c.RawAPI))
		} else {
			errors = append(errors, fmt.Sprintf("API number %q must start with state code %s", c.RawAPI, statePrefix))
		}
	}

	return errors, warnings
}
