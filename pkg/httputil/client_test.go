package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/predictarena/pkg/logger"
)

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "nba", r.URL.Query().Get("sport"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL}, logger.Nop())

	var out struct {
		Status string `json:"status"`
	}
	err := client.GetJSON(context.Background(), "/scores", map[string]string{"sport": "nba"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Status)
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2025-03-14", body["date"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accepted":true}`))
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL}, logger.Nop())

	var out struct {
		Accepted bool `json:"accepted"`
	}
	err := client.PostJSON(context.Background(), "/generate", map[string]string{"date": "2025-03-14"}, &out)
	require.NoError(t, err)
	assert.True(t, out.Accepted)
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL, MaxRetries: 3, RetryWait: time.Millisecond}, logger.Nop())

	require.NoError(t, client.GetJSON(context.Background(), "/", nil, nil))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`invalid api key`))
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL}, logger.Nop())

	err := client.GetJSON(context.Background(), "/", nil, nil)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "invalid api key")
}

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRetryableStatus(tt.code), "status %d", tt.code)
	}
}

func TestPostRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("here you go: {\"a\":1}"))
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL}, logger.Nop())

	body, err := client.PostRaw(context.Background(), "/generate", map[string]string{"date": "2025-03-14"})
	require.NoError(t, err)
	assert.Equal(t, "here you go: {\"a\":1}", string(body))
}
