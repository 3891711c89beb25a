package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/saturnines/nexus-pages/pkg/auth"
	"github.com/saturnines/nexus-pages/pkg/config"
	"github.com/saturnines/nexus-pages/pkg/errors"
	"github.com/saturnines/nexus-pages/pkg/logging"
	"github.com/saturnines/nexus-pages/pkg/pagination"
	"github.com/saturnines/nexus-pages/pkg/transport/rest"
)

const maxErrorBody = 512

// APIClient issues GET requests against one API root and decodes each
// response as a page envelope. It implements rest.RootFetcher.
type APIClient struct {
	httpClient rest.HTTPDoer
	baseURL    string
	headers    map[string]string
	auth       auth.Handler
	timeout    time.Duration
	retry      *config.Retry
	logger     zerolog.Logger
}

var _ rest.RootFetcher = (*APIClient)(nil)

// ClientOption defines config for APIClient
type ClientOption func(*APIClient)

// NewClient creates a new APIClient with the given options
func NewClient(baseURL string, options ...ClientOption) *APIClient {
	client := &APIClient{
		baseURL: baseURL,
		headers: make(map[string]string),
		timeout: config.DefaultTimeout,
		logger:  logging.Logger,
	}

	for _, option := range options {
		option(client)
	}

	if client.httpClient == nil {
		// per attempt; http.Client.Timeout would span the backoff waits too
		rt := NewRetryTransport(http.DefaultTransport, client.retry)
		rt.AttemptTimeout = client.timeout
		rt.Logger = client.logger
		client.httpClient = &http.Client{Transport: rt}
	}

	return client
}

// NewClientFromEndpoint builds a client from a loaded endpoint config
func NewClientFromEndpoint(ep *config.Endpoint, options ...ClientOption) (*APIClient, error) {
	handler, err := auth.CreateHandler(ep.Source.Auth)
	if err != nil {
		return nil, err
	}

	opts := []ClientOption{
		WithTimeout(ep.Source.Timeout),
		WithAuth(handler),
		WithRetry(ep.Retry),
	}
	for k, v := range ep.Source.Headers {
		opts = append(opts, WithHeader(k, v))
	}

	return NewClient(ep.Source.BaseURL, append(opts, options...)...), nil
}

// WithHeader adds a header to all requests
func WithHeader(key, value string) ClientOption {
	return func(c *APIClient) {
		c.headers[key] = value
	}
}

// WithAuth sets the handler applied to every request. nil disables auth.
func WithAuth(handler auth.Handler) ClientOption {
	return func(c *APIClient) {
		c.auth = handler
	}
}

// WithHTTPClient replaces the HTTP client. Timeout and retry options are
// ignored when it is set.
func WithHTTPClient(doer rest.HTTPDoer) ClientOption {
	return func(c *APIClient) {
		c.httpClient = doer
	}
}

// WithTimeout sets the timeout of each attempt. Retries get a fresh one.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *APIClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry wraps the transport in a RetryTransport. nil disables retries.
func WithRetry(cfg *config.Retry) ClientOption {
	return func(c *APIClient) {
		c.retry = cfg
	}
}

// WithLogger overrides the global logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *APIClient) {
		c.logger = logger
	}
}

// BaseURL returns the API root requests are resolved against
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request to the specified endpoint
func (c *APIClient) Get(ctx context.Context, endpoint string) (*http.Response, error) {
	resp, err := rest.RequestHelper(ctx, c.httpClient, http.MethodGet, c.baseURL, endpoint, c.headers, c.auth, nil)
	if err != nil {
		if errors.Is(err, errors.ErrAuthentication) || errors.Is(err, errors.ErrConfiguration) {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.ErrHTTPRequest, "GET "+endpoint)
	}
	return resp, nil
}

// GetEnvelope fetches path and decodes the body as a JSON object.
// Non-2xx responses become an *HTTPError wrapped in ErrHTTPResponse.
func (c *APIClient) GetEnvelope(ctx context.Context, path string) (pagination.Envelope, error) {
	start := time.Now()
	resp, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("GET")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.WrapError(&HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(snippet),
		}, errors.ErrHTTPResponse, "GET "+path)
	}

	return DecodeEnvelope(resp.Body)
}

// DecodeEnvelope reads a JSON object body. Arrays, scalars and null are rejected.
func DecodeEnvelope(r io.Reader) (pagination.Envelope, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrHTTPResponse, "failed to read response body")
	}

	var env pagination.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.WrapError(err, errors.ErrHTTPResponse, "failed to unmarshal JSON")
	}
	if env == nil {
		return nil, errors.WrapError(fmt.Errorf("body is not a JSON object"), errors.ErrHTTPResponse, "failed to unmarshal JSON")
	}
	return env, nil
}
