package pagination

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/saturnines/nexus-pages/pkg/errors"
)

const (
	DefaultDataField = "data"
	DefaultNextField = "next"

	// NextQueryParameter echoes the cursor back under the same name it arrived in.
	NextQueryParameter = "next"
	// SkipQueryParameter is the OData style offset parameter.
	SkipQueryParameter = "$skip"

	// NoLimit disables result-count limiting in FlatMapNotNull.
	NoLimit = 0
)

// Config names the request parameter used to send the cursor back and the
// envelope fields holding the elements and the next cursor.
type Config struct {
	QueryParameter string
	DataField      string
	NextField      string

	// Strict fails a page whose data field is missing or not an array, or
	// whose next field is not a string, number or null. Otherwise such pages
	// degrade to "no elements" / "no cursor".
	Strict bool
}

// NextConfig is the cursor style where the "next" value is sent back as ?next=.
func NextConfig() Config {
	return Config{
		QueryParameter: NextQueryParameter,
		DataField:      DefaultDataField,
		NextField:      DefaultNextField,
	}
}

// SkipConfig is the offset style where the "next" value is sent back as ?$skip=.
func SkipConfig() Config {
	return Config{
		QueryParameter: SkipQueryParameter,
		DataField:      DefaultDataField,
		NextField:      DefaultNextField,
	}
}

// Validate checks that every field name is set.
func (c Config) Validate() error {
	names := map[string]string{
		"query_parameter": c.QueryParameter,
		"data_field":      c.DataField,
		"next_field":      c.NextField,
	}
	missing := lo.Keys(lo.PickBy(names, func(_ string, v string) bool {
		return strings.TrimSpace(v) == ""
	}))
	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)
	return errors.WrapError(
		fmt.Errorf("empty field names: %s", strings.Join(missing, ", ")),
		errors.ErrConfiguration,
		"validate pagination config",
	)
}

func (c Config) String() string {
	return fmt.Sprintf("Config(param=%s, data=%s, next=%s, strict=%t)", c.QueryParameter, c.DataField, c.NextField, c.Strict)
}
