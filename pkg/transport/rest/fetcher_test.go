package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnines/nexus-pages/pkg/pagination"
)

// pathRecorder serves pages keyed by call order and records requested paths.
type pathRecorder struct {
	t     *testing.T
	pages []string

	mu    sync.Mutex
	paths []string
}

func (r *pathRecorder) GetEnvelope(_ context.Context, path string) (pagination.Envelope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.paths = append(r.paths, path)
	body := `{"data": []}`
	if n := len(r.paths); n <= len(r.pages) {
		body = r.pages[n-1]
	}

	var env pagination.Envelope
	require.NoError(r.t, json.Unmarshal([]byte(body), &env))
	return env, nil
}

func TestFromGetUsingNext_CursorRoundTrip(t *testing.T) {
	root := &pathRecorder{t: t, pages: []string{
		`{"data": ["a", "b"], "next": "tok/1 +="}`,
		`{"data": ["c"], "next": "tok2"}`,
		`{"data": [], "next": null}`,
	}}
	seq, err := FromGetUsingNext[string](root, "/repos/acme/widgets/pulls")
	require.NoError(t, err)

	got, err := seq.All(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	require.Len(t, root.paths, 3)
	assert.Equal(t, "/repos/acme/widgets/pulls", root.paths[0])
	assert.Equal(t, "/repos/acme/widgets/pulls?next=tok%2F1+%2B%3D", root.paths[1])
	assert.Equal(t, "/repos/acme/widgets/pulls?next=tok2", root.paths[2])

	u, err := url.Parse(root.paths[1])
	require.NoError(t, err)
	assert.Equal(t, "tok/1 +=", u.Query().Get("next"))
}

func TestFromGetUsingSkip(t *testing.T) {
	root := &pathRecorder{t: t, pages: []string{
		`{"data": [{"id": 1}, {"id": 2}], "next": 2}`,
		`{"data": [{"id": 3}], "next": 3}`,
	}}
	seq, err := FromGetUsingSkip[map[string]any](root, "/pullRequests?status=active")
	require.NoError(t, err)

	got, ok, err := seq.FindFirst(t.Context(), func(r map[string]any) bool { return r["id"] == float64(3) })
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, float64(3), got["id"])
	assert.Equal(t, []string{
		"/pullRequests?status=active",
		"/pullRequests?status=active&%24skip=2",
	}, root.paths)
}

func TestFromUsing_CustomConfig(t *testing.T) {
	root := &pathRecorder{t: t, pages: []string{
		`{"values": [1, 2], "nextPageToken": "p2", "size": 2}`,
		`{"values": [3]}`,
	}}
	cfg := pagination.Config{QueryParameter: "page token", DataField: "values", NextField: "nextPageToken"}
	seq, err := FromUsing[int](root, "/items", cfg)
	require.NoError(t, err)

	got, err := pagination.FlatMapNotNull(t.Context(), seq, func(_ context.Context, x int) (string, bool, error) {
		return fmt.Sprint(x * 10), true, nil
	}, pagination.NoLimit)
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20", "30"}, got)
	assert.Equal(t, []string{"/items", "/items?page+token=p2", "/items"}, root.paths)
}

func TestFromUsing_PropagatesErrors(t *testing.T) {
	boom := fmt.Errorf("HTTP 500")
	calls := 0
	root := RootFetcherFunc(func(_ context.Context, path string) (pagination.Envelope, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return pagination.Envelope{
			"data": json.RawMessage(`[1]`),
			"next": json.RawMessage(`"c1"`),
		}, nil
	})
	seq, err := FromGetUsingNext[int](root, "/pulls")
	require.NoError(t, err)

	got, err := seq.All(t.Context())
	assert.Same(t, boom, err)
	assert.Nil(t, got)
	assert.Equal(t, 2, calls)
}

func TestFromUsing_InvalidConfig(t *testing.T) {
	_, err := FromUsing[int](RootFetcherFunc(nil), "/pulls", pagination.Config{})
	require.Error(t, err)
}
