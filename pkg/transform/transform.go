// Package transform converts raw JSON field values into the shapes the
// record mapper emits.
package transform

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/saturnines/nexus-pages/pkg/errors"
)

// Transformer defines the interface for field transformations
type Transformer interface {
	Transform(value any) (any, error)
}

// Func adapts a plain function to Transformer.
type Func func(value any) (any, error)

// Transform calls f.
func (f Func) Transform(value any) (any, error) { return f(value) }

// Creator builds a transformer from field options
type Creator func(options map[string]any) (Transformer, error)

// Registry holds all available transformers
type Registry struct {
	mu       sync.RWMutex
	creators map[string]Creator
}

// DefaultRegistry is the registry used by the record mapper
var DefaultRegistry = NewRegistry()

// NewRegistry creates a new transformer registry with defaults
func NewRegistry() *Registry {
	r := &Registry{creators: make(map[string]Creator)}

	r.Register("string", stateless(toString))
	r.Register("int", stateless(toInt))
	r.Register("float", stateless(toFloat))
	r.Register("bool", stateless(toBool))
	r.Register("upper", stateless(stringFunc("upper", strings.ToUpper)))
	r.Register("lower", stateless(stringFunc("lower", strings.ToLower)))
	r.Register("trim", stateless(stringFunc("trim", strings.TrimSpace)))
	r.Register("branch", stateless(stringFunc("branch", BranchName)))
	r.Register("date", newDate)
	r.Register("split", newSplit)
	r.Register("join", newJoin)

	return r
}

// Register adds or replaces a transformer type
func (r *Registry) Register(name string, creator Creator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creators[name] = creator
}

// Create builds a transformer from options
func (r *Registry) Create(name string, options map[string]any) (Transformer, error) {
	r.mu.RLock()
	creator, ok := r.creators[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.WrapError(fmt.Errorf("unknown transform type: %s", name), errors.ErrConfiguration, "create transform")
	}
	return creator(options)
}

// Names lists the registered transformer types.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.creators)
}

func stateless(f Func) Creator {
	return func(map[string]any) (Transformer, error) { return f, nil }
}

func stringFunc(name string, f func(string) string) Func {
	return func(value any) (any, error) {
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s transform requires string input, got %T", name, value)
		}
		return f(str), nil
	}
}

// BranchName strips the "refs/heads/" prefix some hosts put on branch refs.
func BranchName(ref string) string {
	return strings.TrimPrefix(ref, "refs/heads/")
}

func toString(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		// JSON numbers decode as float64; keep integral ids free of exponents.
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

func toInt(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), nil
		}
		f, err := v.Float64()
		return int(f), err
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

func toFloat(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return 0.0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0.0, fmt.Errorf("cannot convert %T to float", value)
	}
}

func toBool(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	case int:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case json.Number:
		f, err := v.Float64()
		return f != 0, err
	default:
		return false, fmt.Errorf("cannot convert %T to bool", value)
	}
}

var namedLayouts = map[string]string{
	"RFC3339":     time.RFC3339,
	"RFC3339Nano": time.RFC3339Nano,
	"DateTime":    time.DateTime,
	"Date":        time.DateOnly,
}

func layout(name string) string {
	if l, ok := namedLayouts[name]; ok {
		return l
	}
	return name
}

// DateTransform reparses timestamps. Numbers are Unix seconds.
// Output formats "Unix" and "UnixMilli" produce decimal strings.
type DateTransform struct {
	InputFormat  string
	OutputFormat string
}

func newDate(options map[string]any) (Transformer, error) {
	t := &DateTransform{InputFormat: "RFC3339", OutputFormat: "RFC3339"}
	if f, ok := options["input_format"].(string); ok {
		t.InputFormat = f
	}
	if f, ok := options["output_format"].(string); ok {
		t.OutputFormat = f
	}
	return t, nil
}

func (t *DateTransform) Transform(value any) (any, error) {
	var tm time.Time
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		// Hosts disagree on fractional seconds; RFC3339 parsing accepts both.
		parsed, err := time.ParseInLocation(layout(t.InputFormat), v, time.UTC)
		if err != nil {
			return nil, err
		}
		tm = parsed
	case float64:
		tm = time.Unix(int64(v), 0).UTC()
	case int64:
		tm = time.Unix(v, 0).UTC()
	case json.Number:
		secs, err := v.Int64()
		if err != nil {
			return nil, err
		}
		tm = time.Unix(secs, 0).UTC()
	default:
		return nil, fmt.Errorf("cannot parse date from %T", value)
	}

	switch t.OutputFormat {
	case "Unix":
		return strconv.FormatInt(tm.Unix(), 10), nil
	case "UnixMilli":
		return strconv.FormatInt(tm.UnixMilli(), 10), nil
	default:
		return tm.Format(layout(t.OutputFormat)), nil
	}
}

func delimiter(options map[string]any) string {
	if d, ok := options["delimiter"].(string); ok {
		return d
	}
	return ","
}

func newSplit(options map[string]any) (Transformer, error) {
	delim := delimiter(options)
	return Func(func(value any) (any, error) {
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("split transform requires string input, got %T", value)
		}
		return strings.Split(str, delim), nil
	}), nil
}

func newJoin(options map[string]any) (Transformer, error) {
	delim := delimiter(options)
	return Func(func(value any) (any, error) {
		arr, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("join transform requires array input, got %T", value)
		}
		strs := lo.Map(arr, func(v any, _ int) string { return fmt.Sprintf("%v", v) })
		return strings.Join(strs, delim), nil
	}), nil
}

// Chain applies transforms in order.
func Chain(transforms ...Transformer) Transformer {
	return Func(func(value any) (any, error) {
		result := value
		for _, t := range transforms {
			var err error
			if result, err = t.Transform(result); err != nil {
				return nil, err
			}
		}
		return result, nil
	})
}
