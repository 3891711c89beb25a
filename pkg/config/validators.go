package config

import (
	"fmt"
	"net/url"

	"github.com/samber/lo"
)

// RequiredFieldValidator validates required fields for the API
type RequiredFieldValidator struct{}

// Validate checks that all required fields are present from the API
func (v *RequiredFieldValidator) Validate(endpoint *Endpoint) []ValidationError {
	var errors []ValidationError

	if endpoint.Name == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "is required"})
	}

	if endpoint.Source.BaseURL == "" {
		errors = append(errors, ValidationError{Field: "source.base_url", Message: "is required"})
	} else if u, err := url.Parse(endpoint.Source.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, ValidationError{Field: "source.base_url", Message: "must be an absolute URL"})
	}

	if endpoint.Source.Path == "" {
		errors = append(errors, ValidationError{Field: "source.path", Message: "is required"})
	}

	if endpoint.Limit < 0 {
		errors = append(errors, ValidationError{Field: "limit", Message: "must not be negative"})
	}

	return errors
}

// PaginationValidator validates pagination configuration
type PaginationValidator struct{}

// Validate checks that pagination configuration is valid
func (v *PaginationValidator) Validate(endpoint *Endpoint) []ValidationError {
	var errors []ValidationError

	// Skip validation if pagination is not configured
	p := endpoint.Pagination
	if p == nil {
		return errors
	}

	switch p.Style {
	case PaginationStyleNext, PaginationStyleSkip:
		if p.QueryParam != "" {
			errors = append(errors, ValidationError{
				Field:   "pagination.query_param",
				Message: fmt.Sprintf("is fixed by the %s style, use style custom to override it", p.Style),
			})
		}
	case PaginationStyleCustom:
		if p.QueryParam == "" {
			errors = append(errors, ValidationError{Field: "pagination.query_param", Message: "is required for custom pagination"})
		}
	default:
		errors = append(errors, ValidationError{Field: "pagination.style", Message: fmt.Sprintf("unknown pagination style: %s", p.Style)})
	}

	// compare after defaults: data_field "next" collides with the default next_field
	if resolved := p.Config(); resolved.DataField == resolved.NextField {
		errors = append(errors, ValidationError{
			Field:   "pagination.next_field",
			Message: fmt.Sprintf("must differ from data_field, both resolve to %q", resolved.NextField),
		})
	}

	return errors
}

// AuthValidator handles authentication validation
type AuthValidator struct{}

// Validate checks that authentication configuration is valid
func (v *AuthValidator) Validate(endpoint *Endpoint) []ValidationError {
	var errors []ValidationError

	// Skip validation if auth is not configured
	auth := endpoint.Source.Auth
	if auth == nil {
		return errors
	}

	switch auth.Type {
	case AuthTypeBasic:
		if auth.Basic == nil {
			errors = append(errors, ValidationError{Field: "auth.basic", Message: "is required for basic auth"})
		} else if auth.Basic.Username == "" && auth.Basic.Password == "" {
			errors = append(errors, ValidationError{Field: "auth.basic", Message: "username or password is required for basic auth"})
		}
	case AuthTypeAPIKey:
		if auth.APIKey == nil {
			errors = append(errors, ValidationError{Field: "auth.api_key", Message: "is required for api_key auth"})
		} else {
			if auth.APIKey.Value == "" {
				errors = append(errors, ValidationError{Field: "auth.api_key.value", Message: "is required for api_key auth"})
			}
			if auth.APIKey.Header == "" && auth.APIKey.QueryParam == "" {
				errors = append(errors, ValidationError{Field: "auth.api_key", Message: "either header or query_param must be specified for api_key auth"})
			}
		}
	case AuthTypeBearer:
		if auth.Bearer == nil || auth.Bearer.Token == "" {
			errors = append(errors, ValidationError{Field: "auth.bearer.token", Message: "is required for bearer auth"})
		}
	default:
		errors = append(errors, ValidationError{Field: "auth.type", Message: fmt.Sprintf("unknown auth type: %s", auth.Type)})
	}

	return errors
}

// RetryValidator validates the retry policy
type RetryValidator struct{}

// Validate checks attempts and statuses
func (v *RetryValidator) Validate(endpoint *Endpoint) []ValidationError {
	var errors []ValidationError

	r := endpoint.Retry
	if r == nil {
		return errors
	}

	if r.MaxAttempts < 1 {
		errors = append(errors, ValidationError{Field: "retry.max_attempts", Message: "must be at least 1"})
	}

	bad := lo.Filter(r.RetryableStatuses, func(code int, _ int) bool {
		return code < 400 || code > 599
	})
	if len(bad) > 0 {
		errors = append(errors, ValidationError{Field: "retry.retryable_statuses", Message: fmt.Sprintf("not error statuses: %v", bad)})
	}

	return errors
}

// MappingValidator checks that mapped field names are unique and have paths
type MappingValidator struct{}

// Validate checks the record mapping
func (v *MappingValidator) Validate(endpoint *Endpoint) []ValidationError {
	var errors []ValidationError

	for i, f := range endpoint.Mapping.Fields {
		if f.Name == "" {
			errors = append(errors, ValidationError{Field: fmt.Sprintf("mapping.fields[%d].name", i), Message: "is required"})
		}
		if f.Path == "" {
			errors = append(errors, ValidationError{Field: fmt.Sprintf("mapping.fields[%d].path", i), Message: "is required"})
		}
	}

	names := lo.Map(endpoint.Mapping.Fields, func(f Field, _ int) string { return f.Name })
	for _, dup := range lo.FindDuplicates(names) {
		errors = append(errors, ValidationError{Field: "mapping.fields", Message: fmt.Sprintf("duplicate field name: %s", dup)})
	}

	return errors
}
