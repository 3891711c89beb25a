// Package pullrequest maps raw page elements into normalized pull requests.
package pullrequest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/samber/lo"

	"github.com/saturnines/nexus-pages/pkg/config"
	"github.com/saturnines/nexus-pages/pkg/core"
	"github.com/saturnines/nexus-pages/pkg/errors"
	"github.com/saturnines/nexus-pages/pkg/pagination"
	"github.com/saturnines/nexus-pages/pkg/transform"
)

// Record is one raw element of a page. Numbers decode as json.Number so
// large integer ids keep every digit.
type Record map[string]any

// UnmarshalJSON decodes an object with UseNumber.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*r = m
	return nil
}

// PullRequest is the host independent view of a pull request.
type PullRequest struct {
	ID           string         `json:"id"`
	Title        string         `json:"title,omitempty"`
	Author       string         `json:"author,omitempty"`
	SourceBranch string         `json:"source_branch,omitempty"`
	TargetBranch string         `json:"target_branch,omitempty"`
	State        string         `json:"state,omitempty"`
	URL          string         `json:"url,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// Mapped field names with a typed home on PullRequest.
const (
	FieldID           = "id"
	FieldTitle        = "title"
	FieldAuthor       = "author"
	FieldSourceBranch = "source_branch"
	FieldTargetBranch = "target_branch"
	FieldState        = "state"
	FieldURL          = "url"
	FieldCreatedAt    = "created_at"
)

// DefaultMapping is used when an endpoint declares no fields.
var DefaultMapping = config.Mapping{Fields: []config.Field{
	{Name: FieldID, Path: "id", Required: true},
	{Name: FieldTitle, Path: "title"},
	{Name: FieldState, Path: "state"},
}}

type boundField struct {
	config.Field
	transformer transform.Transformer
}

// Mapper applies a field mapping to raw records.
type Mapper struct {
	fields []boundField
}

// NewMapper resolves every field's transform up front, so an unknown
// transform fails here rather than on the first record.
func NewMapper(mapping config.Mapping, registry *transform.Registry) (*Mapper, error) {
	if len(mapping.Fields) == 0 {
		mapping = DefaultMapping
	}
	if registry == nil {
		registry = transform.DefaultRegistry
	}

	m := &Mapper{fields: make([]boundField, 0, len(mapping.Fields))}
	for _, f := range mapping.Fields {
		bf := boundField{Field: f}
		if f.Transform != "" {
			t, err := registry.Create(f.Transform, f.Options)
			if err != nil {
				return nil, errors.WrapError(err, errors.ErrConfiguration, fmt.Sprintf("field %s", f.Name))
			}
			bf.transformer = t
		}
		m.fields = append(m.fields, bf)
	}
	return m, nil
}

// Map converts one record. ok is false when a required field is missing or
// the record has no id, so the record is skipped. Transform failures are
// ErrExtraction errors.
func (m *Mapper) Map(_ context.Context, record Record) (PullRequest, bool, error) {
	var pr PullRequest

	for _, f := range m.fields {
		v, found := core.Lookup(map[string]any(record), f.Path)
		if !found || v == nil {
			if f.DefaultValue == nil {
				if f.Required {
					return PullRequest{}, false, nil
				}
				continue
			}
			v = f.DefaultValue
		}

		if f.transformer != nil {
			out, err := f.transformer.Transform(v)
			if err != nil {
				return PullRequest{}, false, errors.WrapError(err, errors.ErrExtraction, fmt.Sprintf("field %s at %s", f.Name, f.Path))
			}
			v = out
		}

		pr.set(f.Name, v)
	}

	if pr.ID == "" {
		return PullRequest{}, false, nil
	}
	return pr, true, nil
}

func (pr *PullRequest) set(name string, v any) {
	switch name {
	case FieldID:
		pr.ID = text(v)
	case FieldTitle:
		pr.Title = text(v)
	case FieldAuthor:
		pr.Author = text(v)
	case FieldSourceBranch:
		pr.SourceBranch = text(v)
	case FieldTargetBranch:
		pr.TargetBranch = text(v)
	case FieldState:
		pr.State = text(v)
	case FieldURL:
		pr.URL = text(v)
	case FieldCreatedAt:
		pr.CreatedAt = text(v)
	default:
		if pr.Extra == nil {
			pr.Extra = make(map[string]any)
		}
		pr.Extra[name] = v
	}
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Collect maps the whole sequence, keeping at most limit pull requests
// (pagination.NoLimit for all).
func (m *Mapper) Collect(ctx context.Context, seq *pagination.Sequence[Record], limit int) ([]PullRequest, error) {
	return pagination.FlatMapNotNull(ctx, seq, m.Map, limit)
}

// Find returns the first mapped pull request matching pred. Records the
// mapper skips are never offered to pred.
func (m *Mapper) Find(ctx context.Context, seq *pagination.Sequence[Record], pred func(PullRequest) bool) (PullRequest, bool, error) {
	var found PullRequest
	_, ok, err := seq.FindFirstFunc(ctx, func(ctx context.Context, rec Record) (bool, error) {
		pr, ok, err := m.Map(ctx, rec)
		if err != nil || !ok {
			return false, err
		}
		if pred(pr) {
			found = pr
			return true, nil
		}
		return false, nil
	})
	if err != nil || !ok {
		return PullRequest{}, false, err
	}
	return found, true, nil
}

// Fields lists the mapped field names in declaration order.
func (m *Mapper) Fields() []string {
	return lo.Map(m.fields, func(f boundField, _ int) string { return f.Name })
}
