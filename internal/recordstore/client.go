package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"wellwatch/internal/models"
)

// Client talks to the record store's HTTP API. It does not retry; upstream
// failures surface to the caller, which decides what a failed call means for
// the operation in progress.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListRecords(ctx context.Context, accountID string, kind models.RecordKind, offset string) (Page, error) {
	q := url.Values{}
	q.Set("account", accountID)
	if offset != "" {
		q.Set("offset", offset)
	}
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, kind, q.Encode())

	var page Page
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

func (c *Client) CreateRecords(ctx context.Context, accountID string, kind models.RecordKind, fields []map[string]string) ([]CreateOutcome, error) {
	if len(fields) > MaxRecordsPerCreate {
		return nil, fmt.Errorf("create batch of %d exceeds store limit of %d", len(fields), MaxRecordsPerCreate)
	}

	type createRecord struct {
		Fields map[string]string `json:"fields"`
	}
	body := struct {
		Account string         `json:"account"`
		Records []createRecord `json:"records"`
	}{Account: accountID}
	for _, f := range fields {
		body.Records = append(body.Records, createRecord{Fields: f})
	}

	var resp struct {
		Records []CreateOutcome `json:"records"`
	}
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, kind)
	if err := c.do(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

func (c *Client) CountRecords(ctx context.Context, accountID string, kind models.RecordKind) (int, error) {
	q := url.Values{}
	q.Set("account", accountID)
	endpoint := fmt.Sprintf("%s/%s/count?%s", c.baseURL, kind, q.Encode())

	var resp struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("record store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("record store returned %d: %s", resp.StatusCode, string(snippet))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode record store response: %w", err)
		}
	}
	return nil
}
