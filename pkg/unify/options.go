package unify

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/propverify/pkg/adapter"
	"github.com/agentstation/propverify/pkg/authority"
	"github.com/agentstation/propverify/pkg/regions"
)

// Option configures a Unifier.
type Option func(*Unifier)

// WithRegions replaces the region code table used to derive property.stateName.
func WithRegions(table regions.Table) Option {
	return func(u *Unifier) {
		if table != nil {
			u.regions = table
		}
	}
}

// WithAdapter sets the source adapter applied to every input record.
func WithAdapter(a *adapter.Adapter) Option {
	return func(u *Unifier) {
		if a != nil {
			u.adapter = a
		}
	}
}

// WithAuthority sets the field precedence rules.
func WithAuthority(a authority.Authority) Option {
	return func(u *Unifier) {
		if a != nil {
			u.authority = a
		}
	}
}

// WithClock sets the clock used for generatedAt and provenance timestamps.
func WithClock(now func() time.Time) Option {
	return func(u *Unifier) {
		if now != nil {
			u.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(u *Unifier) {
		if logger != nil {
			u.logger = logger
		}
	}
}
