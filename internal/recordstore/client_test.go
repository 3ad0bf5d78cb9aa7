package recordstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellwatch/internal/models"
)

func TestClientListRecords(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(Page{
			Records: []Record{{ID: "rec-1", Fields: map[string]string{models.FieldSection: "03"}}},
			Offset:  "next-page",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key", time.Second)
	page, err := client.ListRecords(context.Background(), "acct-1", models.KindProperty, "cursor-1")
	require.NoError(t, err)

	assert.Equal(t, "/properties?account=acct-1&offset=cursor-1", gotPath)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "rec-1", page.Records[0].ID)
	assert.Equal(t, "next-page", page.Offset)
}

func TestClientCreateRecords(t *testing.T) {
	var gotBody struct {
		Account string `json:"account"`
		Records []struct {
			Fields map[string]string `json:"fields"`
		} `json:"records"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"records": []CreateOutcome{{ID: "rec-1"}, {Err: "field SEC malformed"}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key", time.Second)
	outcomes, err := client.CreateRecords(context.Background(), "acct-1", models.KindWell, []map[string]string{
		{models.FieldAPINumber: "3501520001"},
		{models.FieldAPINumber: "3501520002"},
	})
	require.NoError(t, err)

	assert.Equal(t, "acct-1", gotBody.Account)
	require.Len(t, gotBody.Records, 2)
	assert.Equal(t, "3501520001", gotBody.Records[0].Fields[models.FieldAPINumber])

	require.Len(t, outcomes, 2)
	assert.Equal(t, "rec-1", outcomes[0].ID)
	assert.Equal(t, "field SEC malformed", outcomes[1].Err)
}

func TestClientCreateRecordsRejectsOversizedBatch(t *testing.T) {
	client := NewClient("http://unused", "k", time.Second)
	fields := make([]map[string]string, MaxRecordsPerCreate+1)
	_, err := client.CreateRecords(context.Background(), "acct-1", models.KindWell, fields)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds store limit")
}

func TestClientCountRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wells/count", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]int{"count": 42})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", time.Second)
	count, err := client.CountRecords(context.Background(), "acct-1", models.KindWell)
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestClientSurfacesUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", time.Second)
	_, err := client.ListRecords(context.Background(), "acct-1", models.KindProperty, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}
