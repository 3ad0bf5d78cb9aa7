package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientLookupWell(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wells/3501520001", r.URL.Path)
		_ = json.NewEncoder(w).Encode(WellAttributes{
			APINumber: "3501520001",
			Name:      "Smith 1-12",
			Status:    "AC",
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	attrs, err := client.LookupWell(context.Background(), "3501520001")
	require.NoError(t, err)
	assert.Equal(t, "Smith 1-12", attrs.Name)
	assert.Equal(t, "AC", attrs.Status)
}

func TestHTTPClientNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	_, err := client.LookupWell(context.Background(), "3599900001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "registry maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	_, err := client.LookupWell(context.Background(), "3501520001")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "503")
}

func TestMockCountsCalls(t *testing.T) {
	m := &Mock{Wells: map[string]WellAttributes{"3501520001": {Name: "Smith 1-12"}}}

	_, err := m.LookupWell(context.Background(), "3501520001")
	require.NoError(t, err)
	_, err = m.LookupWell(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, m.Calls())
}
