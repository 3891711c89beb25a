package core

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/saturnines/nexus-pages/pkg/config"
	"github.com/saturnines/nexus-pages/pkg/logging"
)

// HTTPError is a non-2xx response.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string // first bytes of the body, for diagnostics
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.Status, e.Body)
}

var errRetryableStatus = stderrors.New("retryable status")

// RetryTransport retries idempotent requests on temporary network errors and
// configured statuses, with jittered exponential backoff between attempts.
// When every attempt gets a retryable status the last response is returned.
// AttemptTimeout, when set, bounds each attempt including its body read;
// backoff waits do not count against it. A nil Cfg sends a single attempt.
type RetryTransport struct {
	Base           http.RoundTripper
	Cfg            *config.Retry
	AttemptTimeout time.Duration
	Logger         zerolog.Logger
}

// NewRetryTransport creates a new retry transport
func NewRetryTransport(base http.RoundTripper, cfg *config.Retry) *RetryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RetryTransport{Base: base, Cfg: cfg, Logger: logging.Logger}
}

func (t *RetryTransport) policy(req *http.Request) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = seconds(t.Cfg.InitialBackoff)
	exp.Multiplier = t.Cfg.BackoffMultiplier
	exp.MaxInterval = seconds(t.Cfg.MaxBackoff)
	exp.MaxElapsedTime = 0
	exp.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(t.Cfg.MaxAttempts-1)), req.Context())
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Cfg == nil || t.Cfg.MaxAttempts <= 1 || !idempotent(req.Method) {
		return t.send(req)
	}

	body, err := snapshotBody(req)
	if err != nil {
		return nil, err
	}

	var last *http.Response
	attempt := 0
	operation := func() error {
		attempt++
		resp, err := t.send(cloneRequest(req, body))
		if err != nil {
			var netErr net.Error
			if stderrors.As(err, &netErr) && netErr.Timeout() {
				return err
			}
			return backoff.Permanent(err)
		}

		if last != nil {
			last.Body.Close()
		}
		last = resp
		if lo.Contains(t.Cfg.RetryableStatuses, resp.StatusCode) {
			return fmt.Errorf("%w: %s", errRetryableStatus, resp.Status)
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		t.Logger.Warn().
			Err(err).
			Str("url", req.URL.Redacted()).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("retrying request")
	}

	err = backoff.RetryNotify(operation, t.policy(req), notify)
	switch {
	case err == nil:
		return last, nil
	case stderrors.Is(err, errRetryableStatus) && last != nil:
		return last, nil
	default:
		if last != nil {
			last.Body.Close()
		}
		return nil, err
	}
}

// send performs one attempt. With an AttemptTimeout the deadline stays
// armed until the response body is closed.
func (t *RetryTransport) send(req *http.Request) (*http.Response, error) {
	if t.AttemptTimeout <= 0 {
		return t.Base.RoundTrip(req)
	}

	ctx, cancel := context.WithTimeout(req.Context(), t.AttemptTimeout)
	resp, err := t.Base.RoundTrip(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete,
		http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func snapshotBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func cloneRequest(r *http.Request, body []byte) *http.Request {
	r2 := r.Clone(r.Context())
	if body != nil {
		r2.Body = io.NopCloser(bytes.NewReader(body))
	}
	return r2
}
