package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestLookup(t *testing.T) {
	record := decode(t, `{
		"id": 42,
		"author": {"user": {"display_name": "Ada"}},
		"reviewers": [{"name": "bo", "votes": [1, 2]}, {"name": "cy", "votes": [3]}],
		"labels": [],
		"closed_by": null
	}`)

	tests := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{"id", float64(42), true},
		{"author.user.display_name", "Ada", true},
		{"reviewers[0].name", "bo", true},
		{"reviewers[-1].name", "cy", true},
		{"reviewers[*].name", []any{"bo", "cy"}, true},
		{"reviewers[*].votes[*]", []any{float64(1), float64(2), float64(3)}, true},
		{"reviewers[0].votes[1]", float64(2), true},
		{"closed_by", nil, true},
		{"labels[*].name", nil, false},
		{"reviewers[5].name", nil, false},
		{"author.missing", nil, false},
		{"id.nested", nil, false},
		{"reviewers[x]", nil, false},
		{"reviewers[0", nil, false},
		{"", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Lookup(record, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePath(t *testing.T) {
	segs, err := ParsePath("a.b[2][*].c")
	require.NoError(t, err)
	var parts []string
	for _, s := range segs {
		parts = append(parts, s.String())
	}
	assert.Equal(t, []string{"a", "b", "[2]", "[*]", "c"}, parts)

	_, err = ParsePath("a[1]b")
	assert.Error(t, err)
}
