package rest

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorPath(t *testing.T) {
	testCases := []struct {
		name     string
		basePath string
		param    string
		cursor   string
		want     string
	}{
		{
			name:     "no query string",
			basePath: "/repositories/acme/widgets/pullrequests",
			param:    "next",
			cursor:   "abc",
			want:     "/repositories/acme/widgets/pullrequests?next=abc",
		},
		{
			name:     "existing query string",
			basePath: "/pullrequests?state=OPEN",
			param:    "next",
			cursor:   "abc",
			want:     "/pullrequests?state=OPEN&next=abc",
		},
		{
			name:     "reserved characters are escaped",
			basePath: "/pulls",
			param:    "next",
			cursor:   "a&b=c/d?e f+g%",
			want:     "/pulls?next=a%26b%3Dc%2Fd%3Fe+f%2Bg%25",
		},
		{
			name:     "dollar parameter",
			basePath: "/pullRequests?searchCriteria.status=active",
			param:    EscapeParam("$skip"),
			cursor:   "100",
			want:     "/pullRequests?searchCriteria.status=active&%24skip=100",
		},
		{
			name:     "trailing question mark",
			basePath: "/pulls?",
			param:    "next",
			cursor:   "x",
			want:     "/pulls?next=x",
		},
		{
			name:     "colliding parameter is appended",
			basePath: "/pulls?next=old",
			param:    "next",
			cursor:   "new",
			want:     "/pulls?next=old&next=new",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CursorPath(tc.basePath, tc.param, tc.cursor))
		})
	}
}

func TestCursorPath_RoundTrip(t *testing.T) {
	cursor := "eyJpZCI6IDQyfQ==/+ &?#"
	path := CursorPath("/pulls?state=OPEN", EscapeParam("$skip"), cursor)

	u, err := url.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, cursor, u.Query().Get("$skip"))
	assert.Equal(t, "OPEN", u.Query().Get("state"))
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://api.example.com/2.0/pulls", JoinURL("https://api.example.com/2.0/", "/pulls"))
	assert.Equal(t, "https://api.example.com/2.0/pulls", JoinURL("https://api.example.com/2.0", "pulls"))
	assert.Equal(t, "https://api.example.com", JoinURL("https://api.example.com", ""))
	assert.Equal(t, "https://other.example.com/x", JoinURL("https://api.example.com", "https://other.example.com/x"))
	assert.Equal(t, "/pulls", JoinURL("", "/pulls"))
}
