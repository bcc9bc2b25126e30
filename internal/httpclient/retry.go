// Package httpclient provides the pooled, retrying HTTP clients used for
// every call to the remote backend.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"
)

// RetryConfig holds retry configuration for one client
type RetryConfig struct {
	MaxRetries    int
	BackoffFactor time.Duration
	RetryStatuses []int
}

// BackendRetryConfig returns the retry policy for generation and card
// fetch requests.
func BackendRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		BackoffFactor: 300 * time.Millisecond,
		RetryStatuses: []int{
			http.StatusTooManyRequests,     // 429
			http.StatusInternalServerError, // 500
			http.StatusBadGateway,          // 502
			http.StatusServiceUnavailable,  // 503
			http.StatusGatewayTimeout,      // 504
		},
	}
}

// UploadRetryConfig returns the retry policy for presign and S3 upload
// requests. Uploads are heavier, so fewer attempts with a longer backoff.
func UploadRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    2,
		BackoffFactor: 500 * time.Millisecond,
		RetryStatuses: []int{
			http.StatusInternalServerError, // 500
			http.StatusBadGateway,          // 502
			http.StatusServiceUnavailable,  // 503
			http.StatusGatewayTimeout,      // 504
		},
	}
}

// New returns an http.Client with connection pooling sized for repeated
// calls to a single backend host.
func New(timeout time.Duration, maxIdlePerHost int) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        maxIdlePerHost,
			MaxIdleConnsPerHost: maxIdlePerHost,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Do executes the request with retry on transport errors and retryable
// status codes, backing off exponentially between attempts. reqFunc builds
// a fresh request per attempt so bodies can be resent. The response is
// returned as-is for non-retryable statuses; exhausting the retry budget is
// an error.
func Do(ctx context.Context, client *http.Client, config RetryConfig, reqFunc func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := reqFunc()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req.WithContext(ctx))
		if err == nil && !retryStatus(config, resp.StatusCode) {
			return resp, nil
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if attempt == config.MaxRetries {
			break
		}

		backoff := config.BackoffFactor * (1 << attempt)
		log.Printf("WARN: Request to %s failed (attempt %d/%d), retrying in %v: %v",
			req.URL.Path, attempt+1, config.MaxRetries, backoff, lastErr)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", config.MaxRetries, lastErr)
}

// SetHeaders applies a header set to the request
func SetHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

// IsTimeout reports whether the error chain ends in a timeout
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func retryStatus(config RetryConfig, status int) bool {
	for _, s := range config.RetryStatuses {
		if s == status {
			return true
		}
	}
	return false
}
