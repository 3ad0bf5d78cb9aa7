package recordstore

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"wellwatch/internal/models"
)

// Memory is an in-process Store used in tests and local development. Listing
// paginates with a configurable page size so callers exercise the cursor
// loop. CreateErrs, when set, is consumed one entry per CreateRecords call to
// simulate per-batch failures.
type Memory struct {
	mu       sync.Mutex
	pageSize int
	seq      int
	records  map[models.RecordKind]map[string][]Record

	CreateErrs []error
}

func NewMemory(pageSize int) *Memory {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Memory{
		pageSize: pageSize,
		records:  make(map[models.RecordKind]map[string][]Record),
	}
}

// Seed inserts a record directly, bypassing batch limits and CreateErrs.
func (m *Memory) Seed(accountID string, kind models.RecordKind, fields map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(accountID, kind, fields)
}

func (m *Memory) insert(accountID string, kind models.RecordKind, fields map[string]string) Record {
	if m.records[kind] == nil {
		m.records[kind] = make(map[string][]Record)
	}
	m.seq++
	rec := Record{ID: fmt.Sprintf("rec-%d", m.seq), Fields: fields}
	m.records[kind][accountID] = append(m.records[kind][accountID], rec)
	return rec
}

func (m *Memory) ListRecords(_ context.Context, accountID string, kind models.RecordKind, offset string) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.records[kind][accountID]
	start := 0
	if offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil {
			return Page{}, fmt.Errorf("invalid offset %q", offset)
		}
		start = n
	}
	if start >= len(all) {
		return Page{}, nil
	}

	end := start + m.pageSize
	if end > len(all) {
		end = len(all)
	}
	page := Page{Records: append([]Record(nil), all[start:end]...)}
	if end < len(all) {
		page.Offset = strconv.Itoa(end)
	}
	return page, nil
}

func (m *Memory) CreateRecords(_ context.Context, accountID string, kind models.RecordKind, fields []map[string]string) ([]CreateOutcome, error) {
	if len(fields) > MaxRecordsPerCreate {
		return nil, fmt.Errorf("create batch of %d exceeds store limit of %d", len(fields), MaxRecordsPerCreate)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.CreateErrs) > 0 {
		err := m.CreateErrs[0]
		m.CreateErrs = m.CreateErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	outcomes := make([]CreateOutcome, 0, len(fields))
	for _, f := range fields {
		rec := m.insert(accountID, kind, f)
		outcomes = append(outcomes, CreateOutcome{ID: rec.ID})
	}
	return outcomes, nil
}

func (m *Memory) CountRecords(_ context.Context, accountID string, kind models.RecordKind) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records[kind][accountID]), nil
}
