package config

import "time"

// Endpoint represents the full config for one paged endpoint
type Endpoint struct {
	Name        string      `yaml:"name"`                  // Required: Unique identifier
	Description string      `yaml:"description,omitempty"` // Optional description
	Source      Source      `yaml:"source"`                // Required source configuration
	Pagination  *Pagination `yaml:"pagination,omitempty"`  // Optional, defaults to the next style
	Retry       *Retry      `yaml:"retry,omitempty"`       // Optional retry policy for the transport
	Mapping     Mapping     `yaml:"mapping,omitempty"`     // Optional record mapping
	Limit       int         `yaml:"limit,omitempty"`       // Optional cap on mapped results
	LogLevel    string      `yaml:"log_level,omitempty"`   // Optional, defaults to info
}

// Source represents API config
type Source struct {
	BaseURL string            `yaml:"base_url"`          // Required API root
	Path    string            `yaml:"path"`              // Required collection path, may carry a query string
	Headers map[string]string `yaml:"headers,omitempty"` // HTTP headers
	Timeout time.Duration     `yaml:"timeout,omitempty"` // Per attempt timeout, retries get a fresh one (default 30s)
	Auth    *Auth             `yaml:"auth,omitempty"`    // Optional authentication
}

// Auth defines auth methods.
type Auth struct {
	Type   AuthType    `yaml:"type"`              // Required authentication type
	Basic  *BasicAuth  `yaml:"basic,omitempty"`   // Basic authentication
	APIKey *APIKeyAuth `yaml:"api_key,omitempty"` // API key authentication
	Bearer *BearerAuth `yaml:"bearer,omitempty"`  // Bearer token authentication
}

// AuthType defines current supported authentication types
type AuthType string

const (
	AuthTypeBasic  AuthType = "basic"
	AuthTypeAPIKey AuthType = "api_key"
	AuthTypeBearer AuthType = "bearer"
)

// BasicAuth contains auth credentials for the api
type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// APIKeyAuth contains API details
type APIKeyAuth struct {
	Header     string `yaml:"header,omitempty"`      // Header name
	QueryParam string `yaml:"query_param,omitempty"` // Query parameter name
	Value      string `yaml:"value"`                 // API key value
}

// BearerAuth contains a bearer token
type BearerAuth struct {
	Token  string `yaml:"token"`
	Scheme string `yaml:"scheme,omitempty"` // default "Bearer"
}

// Pagination selects how the cursor is sent back and where the envelope
// keeps its elements and next cursor.
type Pagination struct {
	Style PaginationStyle `yaml:"style"` // next, skip or custom

	QueryParam string `yaml:"query_param,omitempty"` // custom only
	DataField  string `yaml:"data_field,omitempty"`  // default "data"
	NextField  string `yaml:"next_field,omitempty"`  // default "next"
	Strict     bool   `yaml:"strict,omitempty"`      // fail on malformed envelopes
}

// PaginationStyle defines supported pagination styles
type PaginationStyle string

const (
	PaginationStyleNext   PaginationStyle = "next"
	PaginationStyleSkip   PaginationStyle = "skip"
	PaginationStyleCustom PaginationStyle = "custom"
)

// Retry configures the retrying HTTP transport
type Retry struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialBackoff    float64 `yaml:"initial_backoff"`    // seconds
	BackoffMultiplier float64 `yaml:"backoff_multiplier"` // growth per attempt
	MaxBackoff        float64 `yaml:"max_backoff"`        // seconds, default 30
	RetryableStatuses []int   `yaml:"retryable_statuses"`
}

// Mapping defines how raw records become normalized records
type Mapping struct {
	Fields []Field `yaml:"fields"`
}

// Field defines a specific field to extract
type Field struct {
	Name         string         `yaml:"name"`                    // Name of extracted field
	Path         string         `yaml:"path"`                    // Dotted path to field value
	Transform    string         `yaml:"transform,omitempty"`     // Optional transformer name
	Options      map[string]any `yaml:"options,omitempty"`       // Transformer options
	DefaultValue any            `yaml:"default_value,omitempty"` // Used when the path is missing or null
	Required     bool           `yaml:"required,omitempty"`      // Records missing it are skipped
}
