package pagination

import (
	"context"
	"encoding/json"
)

// Envelope is the top-level JSON object of one page response. Only the
// configured data and next fields are ever read.
type Envelope map[string]json.RawMessage

// PageFetcher fetches one page. cursor is nil on the first call and holds the
// previous page's next value afterwards. Implementations must fail on
// transport or status errors rather than return a partial envelope.
type PageFetcher interface {
	Fetch(ctx context.Context, cursor *string) (Envelope, error)
}

// FetcherFunc adapts a plain function to PageFetcher.
type FetcherFunc func(ctx context.Context, cursor *string) (Envelope, error)

func (f FetcherFunc) Fetch(ctx context.Context, cursor *string) (Envelope, error) {
	return f(ctx, cursor)
}
