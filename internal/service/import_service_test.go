package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellwatch/internal/models"
	"wellwatch/internal/recordstore"
	"wellwatch/internal/registry"
	"wellwatch/internal/utils"
)

func newTestImportService(store *recordstore.Memory, reg *registry.Mock) *ImportService {
	logger := utils.GetLogger()
	if reg == nil {
		reg = &registry.Mock{}
	}
	return NewImportService(
		store,
		NewQuotaGate(store, testPlanLimits(), "starter"),
		NewWellEnricher(reg, nil, time.Hour, 5, FixedDelayPacer{}, logger),
		NewBatchCommitter(store, 10, 10, FixedDelayPacer{}, logger),
		"35",
		logger,
	)
}

func TestPreviewListsEveryRowWithStatus(t *testing.T) {
	store := recordstore.NewMemory(0)
	store.Seed("acct-1", models.KindProperty, map[string]string{
		models.FieldSection:  "03",
		models.FieldTownship: "12N",
		models.FieldRange:    "4W",
		models.FieldMeridian: "IM",
	})
	svc := newTestImportService(store, nil)

	records := []map[string]interface{}{
		{"Section": "1", "Township": "12N", "Range": "4W", "Meridian": "IM"}, // fresh
		{"Sec": "Sec 3", "Township": "T12N", "Range": "R4W"},                // duplicate of existing
		{"Section": "99", "Township": "12N", "Range": "4W"},                 // invalid
		{"Section": "1", "Township": "N12", "Range": "W4", "Meridian": "IM"}, // duplicate within file
	}

	preview, err := svc.Preview(context.Background(), "acct-1", "starter", models.KindProperty, records)
	require.NoError(t, err)
	require.Len(t, preview.Results, 4)

	assert.True(t, preview.Results[0].WillImport())
	assert.True(t, preview.Results[1].IsDuplicate)
	assert.False(t, preview.Results[2].IsValid)
	assert.True(t, preview.Results[3].IsDuplicate)
	assert.Contains(t, preview.Results[3].Warnings, "Duplicate in this file")

	assert.Equal(t, 4, preview.Summary.Total)
	assert.Equal(t, 3, preview.Summary.Valid)
	assert.Equal(t, 1, preview.Summary.Invalid)
	assert.Equal(t, 2, preview.Summary.Duplicates)
	assert.Equal(t, 1, preview.Summary.WillImport)

	assert.Equal(t, 1, preview.PlanCheck.Current)
	assert.Equal(t, 2, preview.PlanCheck.AfterUpload)
	assert.False(t, preview.PlanCheck.WouldExceedLimit)

	// Preview is read-only: nothing was written.
	count, err := store.CountRecords(context.Background(), "acct-1", models.KindProperty)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPreviewOverLimitStillListsRows(t *testing.T) {
	store := recordstore.NewMemory(0)
	seedProperties(store, "acct-1", 5)
	svc := newTestImportService(store, nil)

	preview, err := svc.Preview(context.Background(), "acct-1", "starter", models.KindProperty, []map[string]interface{}{
		{"Section": "7", "Township": "9N", "Range": "3W"},
	})
	require.NoError(t, err)
	assert.True(t, preview.PlanCheck.WouldExceedLimit)
	require.Len(t, preview.Results, 1)
	assert.True(t, preview.Results[0].WillImport(), "the quota check never marks rows invalid")
}

func TestCommitWritesAcceptedRowsOnly(t *testing.T) {
	store := recordstore.NewMemory(0)
	svc := newTestImportService(store, nil)

	records := []map[string]interface{}{
		{"Section": "1", "Township": "12N", "Range": "4W"},
		{"Section": "S1", "Township": "T12N", "Range": "R4W"}, // in-file duplicate, dropped silently
		{"Section": "99", "Township": "12N", "Range": "4W"},   // invalid, dropped
		{"Section": "2", "Township": "12N", "Range": "4W"},
	}

	result, err := svc.Commit(context.Background(), "acct-1", "starter", models.KindProperty, records)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Results.Successful)
	assert.Equal(t, 2, result.Results.Skipped)
	assert.Equal(t, 0, result.Results.Failed)

	count, err := store.CountRecords(context.Background(), "acct-1", models.KindProperty)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCommitRejectedWhenOverQuota(t *testing.T) {
	store := recordstore.NewMemory(0)
	seedProperties(store, "acct-1", 4)
	svc := newTestImportService(store, nil)

	records := []map[string]interface{}{
		{"Section": "7", "Township": "9N", "Range": "3W"},
		{"Section": "8", "Township": "9N", "Range": "3W"},
	}

	_, err := svc.Commit(context.Background(), "acct-1", "starter", models.KindProperty, records)
	require.ErrorIs(t, err, ErrQuotaExceeded)

	// The whole commit is rejected before any write.
	count, cerr := store.CountRecords(context.Background(), "acct-1", models.KindProperty)
	require.NoError(t, cerr)
	assert.Equal(t, 4, count)
}

func TestCommitIsPreviewThenWrite(t *testing.T) {
	// Committing the same payload twice imports it once: the second commit
	// re-runs duplicate detection against the now-updated store.
	store := recordstore.NewMemory(0)
	svc := newTestImportService(store, nil)

	records := []map[string]interface{}{
		{"Section": "1", "Township": "12N", "Range": "4W"},
	}

	first, err := svc.Commit(context.Background(), "acct-1", "starter", models.KindProperty, records)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Results.Successful)

	second, err := svc.Commit(context.Background(), "acct-1", "starter", models.KindProperty, records)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Results.Successful)
	assert.Equal(t, 1, second.Results.Skipped)

	count, err := store.CountRecords(context.Background(), "acct-1", models.KindProperty)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCommitEnrichesWells(t *testing.T) {
	store := recordstore.NewMemory(0)
	reg := &registry.Mock{Wells: map[string]registry.WellAttributes{
		"3501520001": {
			APINumber: "3501520001",
			Name:      "Smith 1-12",
			Operator:  "Acme Operating",
			Section:   "3", Township: "12N", Range: "4W",
		},
	}}
	svc := newTestImportService(store, reg)

	records := []map[string]interface{}{
		{"API Number": "35-015-20001"},
		{"API Number": "35-999-00001"}, // unknown to the registry
	}

	result, err := svc.Commit(context.Background(), "acct-1", "starter", models.KindWell, records)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Results.Successful)

	page, err := store.ListRecords(context.Background(), "acct-1", models.KindWell, "")
	require.NoError(t, err)
	require.Len(t, page.Records, 2)

	byAPI := map[string]map[string]string{}
	for _, rec := range page.Records {
		byAPI[rec.Fields[models.FieldAPINumber]] = rec.Fields
	}
	assert.Equal(t, "Smith 1-12", byAPI["3501520001"][models.FieldWellName])
	assert.Equal(t, "Sec 03-12N-4W", byAPI["3501520001"][models.FieldLocation])
	assert.Equal(t, "Location pending", byAPI["3599900001"][models.FieldLocation])
}

func TestCommitAccountsForEveryRow(t *testing.T) {
	// Batch failures and pre-batch skips together cover the submission.
	store := recordstore.NewMemory(0)
	store.CreateErrs = []error{nil, errors.New("store unavailable")}
	svc := newTestImportService(store, nil)

	records := make([]map[string]interface{}, 0, 16)
	for sec := 1; sec <= 15; sec++ {
		records = append(records, map[string]interface{}{
			"Section": sec, "Township": "12N", "Range": "4W",
		})
	}
	records = append(records, map[string]interface{}{"Section": "99", "Township": "12N", "Range": "4W"})

	result, err := svc.Commit(context.Background(), "acct-1", "standard", models.KindProperty, records)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 10, result.Results.Successful)
	assert.Equal(t, 5, result.Results.Failed)
	assert.Equal(t, 1, result.Results.Skipped)
	assert.Equal(t, len(records),
		result.Results.Successful+result.Results.Failed+result.Results.Skipped)
}
