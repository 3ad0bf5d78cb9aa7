package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellwatch/internal/models"
	"wellwatch/internal/recordstore"
	"wellwatch/internal/utils"
)

func wellRows(n int) []models.ImportRow {
	rows := make([]models.ImportRow, n)
	for i := range rows {
		rows[i] = models.ImportRow{
			Normalized: map[string]string{
				models.FieldAPINumber: fmt.Sprintf("35%08d", i+1),
			},
			IsValid: true,
		}
	}
	return rows
}

func TestCommitBatchesSequentially(t *testing.T) {
	store := recordstore.NewMemory(0)
	committer := NewBatchCommitter(store, 10, 10, FixedDelayPacer{}, utils.GetLogger())

	result := committer.Commit(context.Background(), "acct-1", models.KindWell, wellRows(25), 3)

	assert.Equal(t, 25, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 3, result.Skipped)
	assert.Empty(t, result.Errors)

	count, err := store.CountRecords(context.Background(), "acct-1", models.KindWell)
	require.NoError(t, err)
	assert.Equal(t, 25, count)
}

func TestCommitPartialFailure(t *testing.T) {
	// The middle batch fails; sibling batches still land, and
	// successful + failed + skipped accounts for every submitted row.
	store := recordstore.NewMemory(0)
	store.CreateErrs = []error{nil, errors.New("rate limited"), nil}
	committer := NewBatchCommitter(store, 10, 10, FixedDelayPacer{}, utils.GetLogger())

	rows := wellRows(25)
	result := committer.Commit(context.Background(), "acct-1", models.KindWell, rows, 2)

	assert.Equal(t, 15, result.Successful)
	assert.Equal(t, 10, result.Failed)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, len(rows)+2, result.Successful+result.Failed+result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "batch 2")
	assert.Contains(t, result.Errors[0], "rate limited")

	count, err := store.CountRecords(context.Background(), "acct-1", models.KindWell)
	require.NoError(t, err)
	assert.Equal(t, 15, count)
}

func TestCommitBoundsRetainedErrors(t *testing.T) {
	store := recordstore.NewMemory(0)
	store.CreateErrs = []error{
		errors.New("boom"), errors.New("boom"), errors.New("boom"), errors.New("boom"),
	}
	committer := NewBatchCommitter(store, 10, 2, FixedDelayPacer{}, utils.GetLogger())

	result := committer.Commit(context.Background(), "acct-1", models.KindWell, wellRows(40), 0)

	assert.Equal(t, 40, result.Failed)
	assert.Len(t, result.Errors, 2)
}

func TestCommitStopsWhenPacerInterrupted(t *testing.T) {
	store := recordstore.NewMemory(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	committer := NewBatchCommitter(store, 10, 10, FixedDelayPacer{Delay: time.Minute}, utils.GetLogger())
	result := committer.Commit(ctx, "acct-1", models.KindWell, wellRows(25), 0)

	// The first batch runs before any pause; the rest count as failed.
	assert.Equal(t, 10, result.Successful)
	assert.Equal(t, 15, result.Failed)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "commit interrupted")
}

func TestBatchSizeClampedToStoreLimit(t *testing.T) {
	store := recordstore.NewMemory(0)
	committer := NewBatchCommitter(store, 50, 10, FixedDelayPacer{}, utils.GetLogger())

	// A batch size above the store's per-create limit would make every
	// CreateRecords call fail; the clamp keeps them within it.
	result := committer.Commit(context.Background(), "acct-1", models.KindWell, wellRows(12), 0)
	assert.Equal(t, 12, result.Successful)
	assert.Equal(t, 0, result.Failed)
}
