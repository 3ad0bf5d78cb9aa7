package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropertyKey(t *testing.T) {
	fields := map[string]string{
		FieldSection:  "03",
		FieldTownship: "12N",
		FieldRange:    "4W",
		FieldMeridian: "IM",
	}
	assert.Equal(t, "03|12N|4W|IM", PropertyKey(fields))

	// Same legal description, different meridian: distinct identities.
	fields[FieldMeridian] = MeridianCimarron
	assert.Equal(t, "03|12N|4W|CM", PropertyKey(fields))

	// A record missing any key part has no identity.
	delete(fields, FieldTownship)
	assert.Equal(t, "", PropertyKey(fields))
}

func TestRecordKeyDispatch(t *testing.T) {
	wellFields := map[string]string{FieldAPINumber: "3501520001"}
	assert.Equal(t, "3501520001", RecordKey(KindWell, wellFields))
	assert.Equal(t, "", RecordKey(KindWell, map[string]string{}))

	propFields := map[string]string{
		FieldSection: "01", FieldTownship: "9N", FieldRange: "3W", FieldMeridian: "IM",
	}
	assert.Equal(t, "01|9N|3W|IM", RecordKey(KindProperty, propFields))
}

func TestPlanLimitsFor(t *testing.T) {
	limits := PlanLimits{MaxProperties: 5, MaxWells: 7}
	assert.Equal(t, 5, limits.For(KindProperty))
	assert.Equal(t, 7, limits.For(KindWell))
}
