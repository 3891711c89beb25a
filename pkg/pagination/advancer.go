package pagination

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/saturnines/nexus-pages/pkg/errors"
)

var jsonNull = []byte("null")

// cursorAdvancer owns the cursor of a single iteration and turns one fetched
// envelope into a batch of elements.
type cursorAdvancer[T any] struct {
	fetcher PageFetcher
	cfg     Config

	cursor    *string
	exhausted bool
}

// advance performs exactly one fetch. State is only updated when the fetch
// and the decode both succeed.
func (a *cursorAdvancer[T]) advance(ctx context.Context) ([]T, error) {
	env, err := a.fetcher.Fetch(ctx, a.cursor)
	if err != nil {
		return nil, err
	}

	next, err := decodeCursor(env[a.cfg.NextField], a.cfg.NextField, a.cfg.Strict)
	if err != nil {
		return nil, err
	}

	elements, err := decodeElements[T](env[a.cfg.DataField], a.cfg.DataField, a.cfg.Strict)
	if err != nil {
		return nil, err
	}

	a.cursor = next
	// An empty page is the only end condition. A missing cursor with a
	// non-empty page still leads to one more fetch.
	a.exhausted = len(elements) == 0
	return elements, nil
}

// decodeCursor reads the next cursor. Missing, null, "" and 0 mean no cursor.
// Numbers are echoed back as their JSON text.
func decodeCursor(raw json.RawMessage, field string, strict bool) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return nil, nil
	}

	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.WrapError(err, errors.ErrMalformedEnvelope, fmt.Sprintf("decode %q field", field))
		}
		if s == "" {
			return nil, nil
		}
		return &s, nil
	case c == '-' || (c >= '0' && c <= '9'):
		// A zero offset carries no position, same as null.
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil && f == 0 {
			return nil, nil
		}
		s := string(raw)
		return &s, nil
	}

	if strict {
		return nil, errors.WrapError(
			fmt.Errorf("field %q is not a string or number: %s", field, raw),
			errors.ErrMalformedEnvelope,
			"decode next cursor",
		)
	}
	return nil, nil
}

// decodeElements reads the data array. Outside strict mode a missing, null or
// non-array field is an empty page.
func decodeElements[T any](raw json.RawMessage, field string, strict bool) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		if strict {
			return nil, errors.WrapError(
				fmt.Errorf("field %q is missing or not an array", field),
				errors.ErrMalformedEnvelope,
				"decode page elements",
			)
		}
		return nil, nil
	}

	var elements []T
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, errors.WrapError(err, errors.ErrExtraction, fmt.Sprintf("decode %q elements", field))
	}
	return elements, nil
}
