// pkg/transport/rest/builder.go
package rest

import (
	"net/url"
	"strings"
)

// EscapeParam percent-encodes a query parameter name or value.
func EscapeParam(s string) string {
	return url.QueryEscape(s)
}

// CursorPath appends escapedParam=<cursor> to basePath. escapedParam must
// already be encoded; the cursor is encoded here. The separator is "?" unless
// basePath already carries a query string. Existing parameters with the same
// name are left in place.
func CursorPath(basePath, escapedParam, cursor string) string {
	sep := "?"
	if strings.Contains(basePath, "?") {
		sep = "&"
		if strings.HasSuffix(basePath, "?") || strings.HasSuffix(basePath, "&") {
			sep = ""
		}
	}
	return basePath + sep + escapedParam + "=" + EscapeParam(cursor)
}
