package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/saturnines/nexus-pages/pkg/errors"
)

const DefaultTimeout = 30 * time.Second

type ValidationError struct {
	Field   string
	Message string
}

type Validator interface {
	Validate(config *Endpoint) []ValidationError
}

// Returns the string representation of validation error
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DefaultValueSetter Handles the interface for setting default values
type DefaultValueSetter interface {
	SetDefaults(config *Endpoint)
}

// VariableExpander defines the interface for expanding variables
type VariableExpander interface {
	Expand(data []byte) []byte
}

// EnvExpander implements VariableExpander using environment variables
type EnvExpander struct{}

// Expand expands environment variables with the given data
func (e *EnvExpander) Expand(data []byte) []byte {
	expanded := os.Expand(string(data), os.Getenv)
	return []byte(expanded)
}

// EndpointLoader reads Endpoint configurations
type EndpointLoader struct {
	expander      VariableExpander
	validators    []Validator
	defaultSetter DefaultValueSetter
}

// NewEndpointLoader creates a new EndpointLoader with the given components
func NewEndpointLoader(
	expander VariableExpander,
	defaultSetter DefaultValueSetter,
	validators ...Validator,
) *EndpointLoader {
	return &EndpointLoader{
		expander:      expander,
		validators:    validators,
		defaultSetter: defaultSetter,
	}
}

// NewDefaultLoader wires env expansion, defaults and every validator.
func NewDefaultLoader() *EndpointLoader {
	return NewEndpointLoader(
		&EnvExpander{},
		&EndpointDefaults{},
		&RequiredFieldValidator{},
		&PaginationValidator{},
		&AuthValidator{},
		&RetryValidator{},
		&MappingValidator{},
	)
}

// Load a new endpoint config from YAML file
func (l *EndpointLoader) Load(path string) (*Endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrConfiguration, "failed to read file")
	}

	return l.Parse(data)
}

// Parse parses a yaml config
func (l *EndpointLoader) Parse(data []byte) (*Endpoint, error) {
	// Expand variables if an expander is configured
	if l.expander != nil {
		data = l.expander.Expand(data)
	}

	var endpoint Endpoint
	if err := yaml.Unmarshal(data, &endpoint); err != nil {
		return nil, errors.WrapError(err, errors.ErrConfiguration, "failed to parse YAML")
	}

	if l.defaultSetter != nil {
		l.defaultSetter.SetDefaults(&endpoint)
	}

	var allErrors []ValidationError
	for _, validator := range l.validators {
		allErrors = append(allErrors, validator.Validate(&endpoint)...)
	}

	if len(allErrors) > 0 {
		msgs := make([]string, len(allErrors))
		for i, e := range allErrors {
			msgs[i] = e.Error()
		}
		return nil, errors.WrapError(
			fmt.Errorf("%s", strings.Join(msgs, "; ")),
			errors.ErrValidation,
			"invalid endpoint config",
		)
	}

	return &endpoint, nil
}

// EndpointDefaults implements DefaultValueSetter for Endpoint
type EndpointDefaults struct{}

// SetDefaults sets default values for Endpoint
func (d *EndpointDefaults) SetDefaults(endpoint *Endpoint) {
	if endpoint.Source.Timeout <= 0 {
		endpoint.Source.Timeout = DefaultTimeout
	}

	if endpoint.Pagination == nil {
		endpoint.Pagination = &Pagination{Style: PaginationStyleNext}
	}
	if endpoint.Pagination.Style == "" {
		endpoint.Pagination.Style = PaginationStyleNext
	}

	if endpoint.Retry != nil {
		if endpoint.Retry.InitialBackoff <= 0 {
			endpoint.Retry.InitialBackoff = 0.5
		}
		if endpoint.Retry.BackoffMultiplier < 1 {
			endpoint.Retry.BackoffMultiplier = 2
		}
		if endpoint.Retry.MaxBackoff <= 0 {
			endpoint.Retry.MaxBackoff = 30
		}
		if len(endpoint.Retry.RetryableStatuses) == 0 {
			endpoint.Retry.RetryableStatuses = []int{429, 502, 503, 504}
		}
	}

	if endpoint.LogLevel == "" {
		endpoint.LogLevel = "info"
	}
}
