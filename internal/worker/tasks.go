package worker

// TypeWellRefresh re-runs registry enrichment for a list of wells.
const TypeWellRefresh = "well:refresh"

type RefreshPayload struct {
	APINumbers []string `json:"api_numbers"`
}
