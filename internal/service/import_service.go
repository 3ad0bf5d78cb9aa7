package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"wellwatch/internal/models"
	"wellwatch/internal/recordstore"
)

// ImportService runs the preview and commit pipeline. Preview is read-only
// and idempotent. Commit re-runs the same pure normalizers, validators and
// duplicate detection against the submitted payload; validity and duplicate
// flags computed during preview are never trusted across the boundary.
type ImportService struct {
	dedupe      *DuplicateDetector
	quota       *QuotaGate
	enricher    *WellEnricher
	committer   *BatchCommitter
	statePrefix string
	logger      *logrus.Logger
}

func NewImportService(
	store recordstore.Store,
	quota *QuotaGate,
	enricher *WellEnricher,
	committer *BatchCommitter,
	statePrefix string,
	logger *logrus.Logger,
) *ImportService {
	return &ImportService{
		dedupe:      NewDuplicateDetector(store),
		quota:       quota,
		enricher:    enricher,
		committer:   committer,
		statePrefix: statePrefix,
		logger:      logger,
	}
}

// BuildRow normalizes and validates one freeform row. Pure; no I/O.
func (s *ImportService) BuildRow(kind models.RecordKind, raw map[string]interface{}) models.ImportRow {
	var (
		normalized     map[string]string
		errs, warnings []string
	)
	switch kind {
	case models.KindWell:
		c := NormalizeWell(raw, s.statePrefix)
		errs, warnings = ValidateWell(c, s.statePrefix)
		normalized = c.Fields()
	default:
		c := NormalizeProperty(raw)
		errs, warnings = ValidateProperty(c)
		normalized = c.Fields()
	}
	return models.ImportRow{
		Original:   raw,
		Normalized: normalized,
		Errors:     errs,
		Warnings:   warnings,
		IsValid:    len(errs) == 0,
	}
}

// process runs normalize -> validate -> dedupe over a submission.
func (s *ImportService) process(ctx context.Context, accountID string, kind models.RecordKind, records []map[string]interface{}) ([]models.ImportRow, error) {
	rows := make([]models.ImportRow, 0, len(records))
	for _, raw := range records {
		rows = append(rows, s.BuildRow(kind, raw))
	}

	existing, err := s.dedupe.ExistingKeys(ctx, accountID, kind)
	if err != nil {
		return nil, err
	}
	MarkDuplicates(rows, existing, kind)
	return rows, nil
}

// Preview enumerates every row with its status. The quota check is advisory:
// an over-limit submission still gets the full row listing so the caller can
// trim it.
func (s *ImportService) Preview(ctx context.Context, accountID, plan string, kind models.RecordKind, records []map[string]interface{}) (*models.PreviewResult, error) {
	rows, err := s.process(ctx, accountID, kind, records)
	if err != nil {
		return nil, err
	}

	summary := models.Summarize(rows)
	check, err := s.quota.Check(ctx, accountID, plan, kind, summary.WillImport)
	if err != nil {
		return nil, err
	}

	return &models.PreviewResult{
		Results:   rows,
		Summary:   summary,
		PlanCheck: check,
	}, nil
}

// Commit re-validates the payload, re-checks quota against a fresh count,
// enriches wells, and writes the surviving rows in paced batches. A quota
// breach rejects the whole commit before any write; there is no partial
// acceptance on that path.
func (s *ImportService) Commit(ctx context.Context, accountID, plan string, kind models.RecordKind, records []map[string]interface{}) (*models.CommitResult, error) {
	rows, err := s.process(ctx, accountID, kind, records)
	if err != nil {
		return nil, err
	}
	summary := models.Summarize(rows)

	check, err := s.quota.Check(ctx, accountID, plan, kind, summary.WillImport)
	if err != nil {
		return nil, err
	}
	if check.WouldExceedLimit {
		return nil, fmt.Errorf("%w: %s plan allows %d %s, import would reach %d",
			ErrQuotaExceeded, check.Plan, check.Limit, kind, check.AfterUpload)
	}

	// Defense in depth: only valid, non-duplicate rows reach the store even
	// if the caller sent more.
	accepted := make([]models.ImportRow, 0, summary.WillImport)
	for _, row := range rows {
		if row.WillImport() {
			accepted = append(accepted, row)
		}
	}
	skipped := len(rows) - len(accepted)

	if kind == models.KindWell {
		s.enricher.Enrich(ctx, accepted)
	}

	result := s.committer.Commit(ctx, accountID, kind, accepted, skipped)

	s.logger.WithFields(logrus.Fields{
		"kind":       kind,
		"account":    accountID,
		"successful": result.Successful,
		"failed":     result.Failed,
		"skipped":    result.Skipped,
	}).Info("import committed")

	return &models.CommitResult{
		Success: result.Failed == 0,
		Results: result,
	}, nil
}

// PlanStatus reports the current quota position for both record kinds.
func (s *ImportService) PlanStatus(ctx context.Context, accountID, plan string) (map[models.RecordKind]models.QuotaCheck, error) {
	status := make(map[models.RecordKind]models.QuotaCheck, 2)
	for _, kind := range []models.RecordKind{models.KindProperty, models.KindWell} {
		check, err := s.quota.Check(ctx, accountID, plan, kind, 0)
		if err != nil {
			return nil, err
		}
		status[kind] = check
	}
	return status, nil
}
