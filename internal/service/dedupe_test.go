package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellwatch/internal/models"
	"wellwatch/internal/recordstore"
)

func propertyRow(t *testing.T, raw map[string]interface{}) models.ImportRow {
	t.Helper()
	c := NormalizeProperty(raw)
	errs, warns := ValidateProperty(c)
	return models.ImportRow{
		Original:   raw,
		Normalized: c.Fields(),
		Errors:     errs,
		Warnings:   warns,
		IsValid:    len(errs) == 0,
	}
}

func TestExistingKeysFollowsPagination(t *testing.T) {
	store := recordstore.NewMemory(2)
	for _, sec := range []string{"01", "02", "03", "04", "05"} {
		store.Seed("acct-1", models.KindProperty, map[string]string{
			models.FieldSection:  sec,
			models.FieldTownship: "12N",
			models.FieldRange:    "4W",
			models.FieldMeridian: "IM",
		})
	}
	// A record missing part of its key contributes nothing.
	store.Seed("acct-1", models.KindProperty, map[string]string{
		models.FieldSection: "09",
	})

	keys, err := NewDuplicateDetector(store).ExistingKeys(context.Background(), "acct-1", models.KindProperty)
	require.NoError(t, err)
	assert.Len(t, keys, 5)
	assert.Contains(t, keys, "03|12N|4W|IM")
}

func TestMarkDuplicatesAgainstExistingState(t *testing.T) {
	store := recordstore.NewMemory(0)
	store.Seed("acct-1", models.KindProperty, map[string]string{
		models.FieldSection:  "03",
		models.FieldTownship: "12N",
		models.FieldRange:    "4W",
		models.FieldMeridian: "IM",
	})
	existing, err := NewDuplicateDetector(store).ExistingKeys(context.Background(), "acct-1", models.KindProperty)
	require.NoError(t, err)

	// Differently formatted input that normalizes to the existing key.
	rows := []models.ImportRow{
		propertyRow(t, map[string]interface{}{"Sec": "Sec 3", "Township": "T12N", "Range": "R4W"}),
		propertyRow(t, map[string]interface{}{"Sec": "4", "Township": "T12N", "Range": "R4W"}),
	}
	MarkDuplicates(rows, existing, models.KindProperty)

	assert.True(t, rows[0].IsDuplicate)
	assert.True(t, rows[0].IsValid, "duplicates stay valid")
	assert.NotContains(t, rows[0].Warnings, "Duplicate in this file")
	assert.False(t, rows[1].IsDuplicate)
	assert.False(t, rows[0].WillImport())
	assert.True(t, rows[1].WillImport())
}

func TestMarkDuplicatesWithinSubmission(t *testing.T) {
	// "Sec 3", "S3" and "3" all collide once township, range and meridian
	// agree; only the first occurrence imports.
	rows := []models.ImportRow{
		propertyRow(t, map[string]interface{}{"Sec": "Sec 3", "Township": "12N", "Range": "4W"}),
		propertyRow(t, map[string]interface{}{"Sec": "S3", "Township": "T12N", "Range": "R4W"}),
		propertyRow(t, map[string]interface{}{"Sec": "3", "Township": "N12", "Range": "W4"}),
	}
	MarkDuplicates(rows, map[string]struct{}{}, models.KindProperty)

	assert.False(t, rows[0].IsDuplicate)
	assert.True(t, rows[1].IsDuplicate)
	assert.Contains(t, rows[1].Warnings, "Duplicate in this file")
	assert.True(t, rows[2].IsDuplicate)
	assert.Contains(t, rows[2].Warnings, "Duplicate in this file")
}

func TestMarkDuplicatesSkipsInvalidRows(t *testing.T) {
	rows := []models.ImportRow{
		propertyRow(t, map[string]interface{}{"Sec": "99", "Township": "12N", "Range": "4W"}),
		propertyRow(t, map[string]interface{}{"Sec": "99", "Township": "12N", "Range": "4W"}),
	}
	MarkDuplicates(rows, map[string]struct{}{}, models.KindProperty)

	assert.False(t, rows[0].IsDuplicate)
	assert.False(t, rows[1].IsDuplicate, "invalid rows never participate in dedup")
}
