package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"wellwatch/internal/models"
	"wellwatch/internal/recordstore"
)

// Pacer bounds the rate of successive calls against an external service.
type Pacer interface {
	Pause(ctx context.Context) error
}

// FixedDelayPacer waits a fixed delay between calls.
type FixedDelayPacer struct {
	Delay time.Duration
}

func (p FixedDelayPacer) Pause(ctx context.Context) error {
	if p.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(p.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BatchCommitter creates accepted records in bounded batches, strictly
// sequentially with a pause between batches to respect the store's rate
// limit. Each batch's outcome is independent: a failed batch counts toward
// failed and its error text is retained (bounded), but sibling batches still
// execute. There is no rollback; commits are at-least-once per batch.
type BatchCommitter struct {
	store     recordstore.Store
	batchSize int
	maxErrors int
	pacer     Pacer
	logger    *logrus.Logger
}

func NewBatchCommitter(store recordstore.Store, batchSize, maxErrors int, pacer Pacer, logger *logrus.Logger) *BatchCommitter {
	if batchSize <= 0 || batchSize > recordstore.MaxRecordsPerCreate {
		batchSize = recordstore.MaxRecordsPerCreate
	}
	if maxErrors <= 0 {
		maxErrors = 10
	}
	if pacer == nil {
		pacer = FixedDelayPacer{}
	}
	return &BatchCommitter{
		store:     store,
		batchSize: batchSize,
		maxErrors: maxErrors,
		pacer:     pacer,
		logger:    logger,
	}
}

// Commit writes the already-filtered rows. skipped is the count of rows
// dropped before batching (invalid or duplicate); it is reported so that
// successful + failed + skipped equals the total submitted.
func (c *BatchCommitter) Commit(ctx context.Context, accountID string, kind models.RecordKind, rows []models.ImportRow, skipped int) models.BatchResult {
	result := models.BatchResult{Skipped: skipped, Errors: []string{}}

	for start := 0; start < len(rows); start += c.batchSize {
		end := start + c.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		batchNum := start/c.batchSize + 1

		if start > 0 {
			if err := c.pacer.Pause(ctx); err != nil {
				remaining := len(rows) - start
				result.Failed += remaining
				result.Errors = c.appendError(result.Errors, fmt.Sprintf("commit interrupted before batch %d: %v", batchNum, err))
				return result
			}
		}

		fields := make([]map[string]string, len(batch))
		for i, row := range batch {
			fields[i] = row.Normalized
		}

		outcomes, err := c.store.CreateRecords(ctx, accountID, kind, fields)
		if err != nil {
			result.Failed += len(batch)
			result.Errors = c.appendError(result.Errors, fmt.Sprintf("batch %d: %v", batchNum, err))
			c.logger.WithFields(logrus.Fields{
				"kind":  kind,
				"batch": batchNum,
				"size":  len(batch),
			}).WithError(err).Warn("record batch failed")
			continue
		}

		for _, out := range outcomes {
			if out.Err != "" {
				result.Failed++
				result.Errors = c.appendError(result.Errors, fmt.Sprintf("batch %d: %s", batchNum, out.Err))
			} else {
				result.Successful++
			}
		}
	}

	return result
}

func (c *BatchCommitter) appendError(errs []string, msg string) []string {
	if len(errs) >= c.maxErrors {
		return errs
	}
	return append(errs, msg)
}
