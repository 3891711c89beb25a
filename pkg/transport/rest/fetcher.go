package rest

import (
	"context"

	"github.com/saturnines/nexus-pages/pkg/pagination"
)

// RootFetcher performs one GET against a path relative to the API root and
// returns the decoded response object.
type RootFetcher interface {
	GetEnvelope(ctx context.Context, path string) (pagination.Envelope, error)
}

// RootFetcherFunc adapts a plain function to RootFetcher.
type RootFetcherFunc func(ctx context.Context, path string) (pagination.Envelope, error)

func (f RootFetcherFunc) GetEnvelope(ctx context.Context, path string) (pagination.Envelope, error) {
	return f(ctx, path)
}

// NewPageFetcher returns a PageFetcher that requests basePath and, once a
// cursor is known, basePath with the cursor appended under queryParam.
func NewPageFetcher(root RootFetcher, basePath, queryParam string) pagination.PageFetcher {
	escaped := EscapeParam(queryParam)

	return pagination.FetcherFunc(func(ctx context.Context, cursor *string) (pagination.Envelope, error) {
		path := basePath
		if cursor != nil {
			path = CursorPath(basePath, escaped, *cursor)
		}
		return root.GetEnvelope(ctx, path)
	})
}

// FromUsing builds a Sequence over basePath with the given field configuration.
func FromUsing[T any](root RootFetcher, basePath string, cfg pagination.Config, opts ...pagination.Option) (*pagination.Sequence[T], error) {
	return pagination.New[T](NewPageFetcher(root, basePath, cfg.QueryParameter), cfg, opts...)
}

// FromGetUsingNext pages with ?next=<cursor>, reading "data" and "next".
func FromGetUsingNext[T any](root RootFetcher, basePath string, opts ...pagination.Option) (*pagination.Sequence[T], error) {
	return FromUsing[T](root, basePath, pagination.NextConfig(), opts...)
}

// FromGetUsingSkip pages with ?$skip=<cursor>, reading "data" and "next".
func FromGetUsingSkip[T any](root RootFetcher, basePath string, opts ...pagination.Option) (*pagination.Sequence[T], error) {
	return FromUsing[T](root, basePath, pagination.SkipConfig(), opts...)
}
