package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int, statuses ...int) RetryConfig {
	return RetryConfig{
		MaxRetries:    maxRetries,
		BackoffFactor: time.Millisecond,
		RetryStatuses: statuses,
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := Do(context.Background(), server.Client(), fastConfig(3, 500), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, server.URL, nil)
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestDoReturnsNonRetryableResponse(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resp, err := Do(context.Background(), server.Client(), fastConfig(3, 500), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, server.URL, nil)
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestDoExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := Do(context.Background(), server.Client(), fastConfig(2, 503), func() (*http.Request, error) {
		return http.NewRequest(http.MethodPost, server.URL, nil)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed after 2 retries")
	assert.Equal(t, int32(3), attempts.Load())
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(ctx, http.DefaultClient, fastConfig(3, 500), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, "http://127.0.0.1:0", nil)
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackendRetriesRateLimitButUploadDoesNot(t *testing.T) {
	assert.True(t, retryStatus(BackendRetryConfig(), http.StatusTooManyRequests))
	assert.False(t, retryStatus(UploadRetryConfig(), http.StatusTooManyRequests))
	assert.True(t, retryStatus(UploadRetryConfig(), http.StatusBadGateway))
}
