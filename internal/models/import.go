package models

// ImportRow is one submitted row after normalization and validation. It is
// built fresh per request (preview or commit) and discarded with the response.
type ImportRow struct {
	Original    map[string]interface{} `json:"original"`
	Normalized  map[string]string      `json:"normalized"`
	Errors      []string               `json:"errors"`
	Warnings    []string               `json:"warnings"`
	IsDuplicate bool                   `json:"is_duplicate"`
	IsValid     bool                   `json:"is_valid"`
}

// WillImport reports whether the row survives to commit: valid and not a
// duplicate of existing state or of an earlier row in the same submission.
func (r ImportRow) WillImport() bool {
	return r.IsValid && !r.IsDuplicate
}

// ValidationSummary aggregates row statuses for a preview response.
type ValidationSummary struct {
	Total      int `json:"total"`
	Valid      int `json:"valid"`
	Invalid    int `json:"invalid"`
	Duplicates int `json:"duplicates"`
	Warnings   int `json:"warnings"`
	WillImport int `json:"will_import"`
}

// Summarize derives the summary counts from a set of processed rows.
func Summarize(rows []ImportRow) ValidationSummary {
	s := ValidationSummary{Total: len(rows)}
	for _, r := range rows {
		if r.IsValid {
			s.Valid++
		} else {
			s.Invalid++
		}
		if r.IsDuplicate {
			s.Duplicates++
		}
		s.Warnings += len(r.Warnings)
		if r.WillImport() {
			s.WillImport++
		}
	}
	return s
}

// QuotaCheck is the plan-ceiling projection for a submission.
type QuotaCheck struct {
	Current          int    `json:"current"`
	Limit            int    `json:"limit"` // -1 means unbounded
	Plan             string `json:"plan"`
	AfterUpload      int    `json:"after_upload"`
	WouldExceedLimit bool   `json:"would_exceed_limit"`
}

// BatchResult reports the outcome of a batched commit. Skipped counts rows
// filtered out before batching (invalid or duplicate).
type BatchResult struct {
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors"`
}

// PreviewResult is the read-only preview response.
type PreviewResult struct {
	Results   []ImportRow       `json:"results"`
	Summary   ValidationSummary `json:"summary"`
	PlanCheck QuotaCheck        `json:"plan_check"`
}

// CommitResult is the commit response.
type CommitResult struct {
	Success bool        `json:"success"`
	Results BatchResult `json:"results"`
}
