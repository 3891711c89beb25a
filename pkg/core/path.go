package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Lookup resolves a dotted path against a decoded JSON value.
// Supported forms:
//   - nested fields: "author.display_name"
//   - array indices: "reviewers[0]", "reviewers[-1]" (negative counts from the end)
//   - wildcards: "reviewers[*].name", which collects matches into a []any
//
// The second result is false when the path does not resolve.
func Lookup(data any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	segments, err := ParsePath(path)
	if err != nil {
		return nil, false
	}
	return walk(data, segments)
}

type segmentKind int

const (
	fieldSegment segmentKind = iota
	indexSegment
	wildcardSegment
)

// Segment is one step of a parsed path
type Segment struct {
	kind  segmentKind
	field string
	index int
}

func (s Segment) String() string {
	switch s.kind {
	case indexSegment:
		return fmt.Sprintf("[%d]", s.index)
	case wildcardSegment:
		return "[*]"
	default:
		return s.field
	}
}

// ParsePath splits a path into segments, rejecting malformed brackets.
func ParsePath(path string) ([]Segment, error) {
	var segments []Segment

	for _, part := range strings.Split(path, ".") {
		if part == "" {
			continue
		}

		open := strings.IndexByte(part, '[')
		if open == -1 {
			segments = append(segments, Segment{kind: fieldSegment, field: part})
			continue
		}
		if open > 0 {
			segments = append(segments, Segment{kind: fieldSegment, field: part[:open]})
		}

		rest := part[open:]
		for rest != "" {
			if rest[0] != '[' {
				return nil, fmt.Errorf("unexpected %q after bracket in %q", rest, part)
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				return nil, fmt.Errorf("unclosed bracket in %q", part)
			}

			inner := rest[1:end]
			if inner == "*" {
				segments = append(segments, Segment{kind: wildcardSegment})
			} else {
				idx, err := strconv.Atoi(inner)
				if err != nil {
					return nil, fmt.Errorf("invalid array index %q in %q", inner, part)
				}
				segments = append(segments, Segment{kind: indexSegment, index: idx})
			}
			rest = rest[end+1:]
		}
	}

	return segments, nil
}

func walk(current any, segments []Segment) (any, bool) {
	for i, seg := range segments {
		switch seg.kind {
		case fieldSegment:
			obj, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}
			if current, ok = obj[seg.field]; !ok {
				return nil, false
			}

		case indexSegment:
			arr, ok := current.([]any)
			if !ok {
				return nil, false
			}
			idx := seg.index
			if idx < 0 {
				idx += len(arr)
			}
			if idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]

		case wildcardSegment:
			arr, ok := current.([]any)
			if !ok {
				return nil, false
			}
			if i == len(segments)-1 {
				return arr, true
			}

			var results []any
			for _, elem := range arr {
				v, ok := walk(elem, segments[i+1:])
				if !ok {
					continue
				}
				// nested wildcards flatten
				if nested, isArr := v.([]any); isArr && hasWildcard(segments[i+1:]) {
					results = append(results, nested...)
				} else {
					results = append(results, v)
				}
			}
			if len(results) == 0 {
				return nil, false
			}
			return results, true
		}
	}

	return current, true
}

func hasWildcard(segments []Segment) bool {
	for _, s := range segments {
		if s.kind == wildcardSegment {
			return true
		}
	}
	return false
}
