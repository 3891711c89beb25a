package config

import (
	"github.com/saturnines/nexus-pages/pkg/pagination"
)

// Config resolves the configured style into the engine's field configuration.
// A nil Pagination means the next style.
func (p *Pagination) Config() pagination.Config {
	if p == nil {
		return pagination.NextConfig()
	}

	var cfg pagination.Config
	switch p.Style {
	case PaginationStyleSkip:
		cfg = pagination.SkipConfig()
	case PaginationStyleCustom:
		cfg = pagination.Config{
			QueryParameter: p.QueryParam,
			DataField:      pagination.DefaultDataField,
			NextField:      pagination.DefaultNextField,
		}
	default:
		cfg = pagination.NextConfig()
	}

	if p.DataField != "" {
		cfg.DataField = p.DataField
	}
	if p.NextField != "" {
		cfg.NextField = p.NextField
	}
	cfg.Strict = p.Strict
	return cfg
}
