package core

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnines/nexus-pages/pkg/config"
	"github.com/saturnines/nexus-pages/pkg/errors"
)

func fastRetry(attempts int, statuses ...int) *config.Retry {
	return &config.Retry{
		MaxAttempts:       attempts,
		InitialBackoff:    0.001,
		BackoffMultiplier: 2,
		MaxBackoff:        0.01,
		RetryableStatuses: statuses,
	}
}

// flakyServer fails the first n requests with status, then serves an empty page.
func flakyServer(t *testing.T, n int32, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= n {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"try later"}`))
			return
		}
		writeJSON(t, w, map[string]any{"data": []int{}})
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

func TestRetryTransport_RecoversFromRetryableStatus(t *testing.T) {
	ts, hits := flakyServer(t, 2, http.StatusServiceUnavailable)

	client := NewClient(ts.URL, WithRetry(fastRetry(3, 503)))
	env, err := client.GetEnvelope(t.Context(), "/pulls")
	require.NoError(t, err)
	assert.Contains(t, env, "data")
	assert.EqualValues(t, 3, hits.Load())
}

func TestRetryTransport_ExhaustedReturnsLastResponse(t *testing.T) {
	ts, hits := flakyServer(t, 10, http.StatusTooManyRequests)

	_, err := NewClient(ts.URL, WithRetry(fastRetry(2, 429))).GetEnvelope(t.Context(), "/pulls")
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "try later")
	assert.EqualValues(t, 2, hits.Load())
}

func TestRetryTransport_NonRetryableStatus(t *testing.T) {
	ts, hits := flakyServer(t, 10, http.StatusNotFound)

	_, err := NewClient(ts.URL, WithRetry(fastRetry(5, 503))).GetEnvelope(t.Context(), "/pulls")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrHTTPResponse))
	assert.EqualValues(t, 1, hits.Load())
}

func TestRetryTransport_SingleAttemptPassesThrough(t *testing.T) {
	ts, hits := flakyServer(t, 1, http.StatusServiceUnavailable)

	_, err := NewClient(ts.URL, WithRetry(fastRetry(1, 503))).GetEnvelope(t.Context(), "/pulls")
	require.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestRetryTransport_PostIsNotRetried(t *testing.T) {
	ts, hits := flakyServer(t, 10, http.StatusServiceUnavailable)

	client := &http.Client{Transport: NewRetryTransport(nil, fastRetry(3, 503))}
	resp, err := client.Post(ts.URL, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.EqualValues(t, 1, hits.Load())
}

func TestRetryTransport_ReplaysBody(t *testing.T) {
	bodies := make(chan string, 2)
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies <- string(b)
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPut, ts.URL, strings.NewReader("payload"))
	require.NoError(t, err)
	resp, err := (&http.Client{Transport: NewRetryTransport(nil, fastRetry(2, 503))}).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "payload", <-bodies)
	assert.Equal(t, "payload", <-bodies)
}

func TestRetryTransport_ContextCancelledDuringBackoff(t *testing.T) {
	ts, _ := flakyServer(t, 10, http.StatusServiceUnavailable)

	slow := &config.Retry{
		MaxAttempts:       5,
		InitialBackoff:    10,
		BackoffMultiplier: 2,
		MaxBackoff:        30,
		RetryableStatuses: []int{503},
	}
	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewClient(ts.URL, WithRetry(slow)).GetEnvelope(ctx, "/pulls")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRetryTransport_TimeoutIsPerAttempt(t *testing.T) {
	ts, hits := flakyServer(t, 2, http.StatusServiceUnavailable)

	// Every backoff wait is at least 200ms, so two of them outlast the timeout.
	policy := &config.Retry{
		MaxAttempts:       3,
		InitialBackoff:    0.4,
		BackoffMultiplier: 1,
		MaxBackoff:        0.4,
		RetryableStatuses: []int{503},
	}
	client := NewClient(ts.URL, WithTimeout(300*time.Millisecond), WithRetry(policy))

	start := time.Now()
	env, err := client.GetEnvelope(t.Context(), "/pulls")
	require.NoError(t, err)
	assert.Contains(t, env, "data")
	assert.EqualValues(t, 3, hits.Load())
	assert.Greater(t, time.Since(start), 300*time.Millisecond)
}

// slowServer stalls the first n requests past any short attempt timeout.
func slowServer(t *testing.T, n int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= n {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		writeJSON(t, w, map[string]any{"data": []int{}})
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

func TestRetryTransport_AttemptTimeoutIsRetried(t *testing.T) {
	ts, hits := slowServer(t, 1)

	client := NewClient(ts.URL, WithTimeout(100*time.Millisecond), WithRetry(fastRetry(2, 503)))
	_, err := client.GetEnvelope(t.Context(), "/pulls")
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())
}

func TestRetryTransport_AttemptTimeoutWithoutRetry(t *testing.T) {
	ts, hits := slowServer(t, 1)

	_, err := NewClient(ts.URL, WithTimeout(100*time.Millisecond)).GetEnvelope(t.Context(), "/pulls")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, errors.Is(err, errors.ErrHTTPRequest))
	assert.EqualValues(t, 1, hits.Load())
}
