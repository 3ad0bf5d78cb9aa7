package service

import (
	"context"
	"fmt"

	"wellwatch/internal/models"
	"wellwatch/internal/recordstore"
)

// DuplicateDetector flags rows that collide with the account's existing
// records or with earlier rows of the same submission. Both checks run on
// canonical keys, so "Sec 3", "S3" and "3" collide when township, range and
// meridian agree.
type DuplicateDetector struct {
	store recordstore.Store
}

func NewDuplicateDetector(store recordstore.Store) *DuplicateDetector {
	return &DuplicateDetector{store: store}
}

// ExistingKeys fetches the account's full record set of the given kind,
// following the store's pagination cursor, and projects every record onto its
// composite key.
func (d *DuplicateDetector) ExistingKeys(ctx context.Context, accountID string, kind models.RecordKind) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	offset := ""
	for {
		page, err := d.store.ListRecords(ctx, accountID, kind, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list existing %s: %w", kind, err)
		}
		for _, rec := range page.Records {
			if key := models.RecordKey(kind, rec.Fields); key != "" {
				keys[key] = struct{}{}
			}
		}
		if page.Offset == "" {
			return keys, nil
		}
		offset = page.Offset
	}
}

// MarkDuplicates sets IsDuplicate on rows whose key is already present in
// existing state, and on rows repeating an earlier row of the same
// submission (those also get a "Duplicate in this file" warning). Duplicates
// stay valid; they are excluded from willImport and silently dropped before
// commit, never turned into errors. The in-submission scan is O(n²) over the
// submission, which practical file sizes keep bounded.
func MarkDuplicates(rows []models.ImportRow, existing map[string]struct{}, kind models.RecordKind) {
	for i := range rows {
		if !rows[i].IsValid {
			continue
		}
		key := models.RecordKey(kind, rows[i].Normalized)
		if key == "" {
			continue
		}

		if _, ok := existing[key]; ok {
			rows[i].IsDuplicate = true
		}

		for j := 0; j < i; j++ {
			if !rows[j].IsValid {
				continue
			}
			if models.RecordKey(kind, rows[j].Normalized) == key {
				rows[i].IsDuplicate = true
				rows[i].Warnings = append(rows[i].Warnings, "Duplicate in this file")
				break
			}
		}
	}
}
