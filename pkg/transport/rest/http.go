package rest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/saturnines/nexus-pages/pkg/auth"
)

// HTTPDoer is a minimal interface for HTTP clients
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// RequestHelper handles common HTTP request creation
func RequestHelper(
	ctx context.Context,
	doer HTTPDoer,
	method string,
	baseURL string,
	endpoint string,
	headers map[string]string,
	authHandler auth.Handler,
	body []byte,
) (*http.Response, error) {
	url := JoinURL(baseURL, endpoint)

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	// Add headers
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	// If body is present, assume JSON content type
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authHandler != nil {
		if err := authHandler.ApplyAuth(req); err != nil {
			return nil, err
		}
	}

	return doer.Do(req)
}

// JoinURL appends endpoint to baseURL with exactly one slash between them.
// An absolute endpoint URL is returned unchanged.
func JoinURL(baseURL, endpoint string) string {
	switch {
	case endpoint == "":
		return baseURL
	case baseURL == "", strings.HasPrefix(endpoint, "http://"), strings.HasPrefix(endpoint, "https://"):
		return endpoint
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
}
