package recordstore

import (
	"context"

	"wellwatch/internal/models"
)

// Record is one stored record with its opaque store-assigned ID.
type Record struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
}

// Page is one page of a cursor-paginated listing. An empty Offset means the
// listing is exhausted.
type Page struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// CreateOutcome is the per-record result of a batched create.
type CreateOutcome struct {
	ID  string `json:"id,omitempty"`
	Err string `json:"error,omitempty"`
}

// MaxRecordsPerCreate is the store's per-call record limit. Callers batch
// accordingly; CreateRecords rejects larger batches.
const MaxRecordsPerCreate = 10

// Store is the external persistent record store for monitored properties and
// wells. The store's own storage engine is not this service's concern.
type Store interface {
	// ListRecords returns one page of the account's records of the given
	// kind. Pass the previous page's Offset to continue; "" starts over.
	ListRecords(ctx context.Context, accountID string, kind models.RecordKind, offset string) (Page, error)

	// CreateRecords creates up to MaxRecordsPerCreate records in one call and
	// reports a per-record outcome.
	CreateRecords(ctx context.Context, accountID string, kind models.RecordKind, fields []map[string]string) ([]CreateOutcome, error)

	// CountRecords returns the account's current record count of the given
	// kind.
	CountRecords(ctx context.Context, accountID string, kind models.RecordKind) (int, error)
}
