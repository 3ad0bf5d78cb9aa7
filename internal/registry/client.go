package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ErrNotFound means the registry has no record for the API number. Callers
// treat this as an enrichment miss, not a failure.
var ErrNotFound = errors.New("well not found in registry")

// WellAttributes are the display fields the state well registry knows about
// a well.
type WellAttributes struct {
	APINumber string  `json:"api_number"`
	Name      string  `json:"name"`
	Operator  string  `json:"operator"`
	County    string  `json:"county"`
	Section   string  `json:"section"`
	Township  string  `json:"township"`
	Range     string  `json:"range"`
	Status    string  `json:"status"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Client looks up a well in the external registry.
type Client interface {
	LookupWell(ctx context.Context, apiNumber string) (*WellAttributes, error)
}

// HTTPClient queries the registry's HTTP API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) LookupWell(ctx context.Context, apiNumber string) (*WellAttributes, error) {
	endpoint := fmt.Sprintf("%s/wells/%s", c.baseURL, apiNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("registry returned %d: %s", resp.StatusCode, string(snippet))
	}

	var attrs WellAttributes
	if err := json.NewDecoder(resp.Body).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("failed to decode registry response: %w", err)
	}
	return &attrs, nil
}

// Mock is a deterministic client for tests and development. A configurable
// latency mimics real-world calls.
type Mock struct {
	Wells   map[string]WellAttributes
	Latency time.Duration
	Err     error

	mu    sync.Mutex
	calls int
}

func (m *Mock) LookupWell(_ context.Context, apiNumber string) (*WellAttributes, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	time.Sleep(m.Latency)
	if m.Err != nil {
		return nil, m.Err
	}
	attrs, ok := m.Wells[apiNumber]
	if !ok {
		return nil, ErrNotFound
	}
	return &attrs, nil
}

// Calls reports how many lookups have been issued.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
