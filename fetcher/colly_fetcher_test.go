package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUA = "michelin-test-agent/1.0"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>ua=" + r.UserAgent() + "</body></html>"))
	})
	mux.HandleFunc("/wiki/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/wiki/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCollyFetcher_Fetch(t *testing.T) {
	srv := newTestServer(t)
	f, err := NewCollyFetcher(testUA, 0, nil)
	require.NoError(t, err)

	html, err := f.Fetch(context.Background(), srv.URL+"/wiki/ok", time.Second)
	require.NoError(t, err)
	assert.Contains(t, html, "ua="+testUA)

	// same URL again must not be rejected as already visited
	_, err = f.Fetch(context.Background(), srv.URL+"/wiki/ok", time.Second)
	assert.NoError(t, err)
}

func TestCollyFetcher_Failures(t *testing.T) {
	srv := newTestServer(t)
	f, err := NewCollyFetcher(testUA, 0, nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		url     string
		timeout time.Duration
	}{
		{"http error status", srv.URL + "/wiki/missing", time.Second},
		{"timeout", srv.URL + "/wiki/slow", 50 * time.Millisecond},
		{"connection refused", "http://127.0.0.1:1/wiki/none", time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), tt.url, tt.timeout)
			assert.Error(t, err)
		})
	}
}

func TestCollyFetcher_Delay(t *testing.T) {
	srv := newTestServer(t)
	delay := 150 * time.Millisecond
	f, err := NewCollyFetcher(testUA, delay, nil)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), srv.URL+"/wiki/ok", time.Second)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), delay)
}
