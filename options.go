package propverify

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/propverify/internal/metrics"
	"github.com/agentstation/propverify/internal/store"
	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/sources"
	"github.com/agentstation/propverify/pkg/unify"
)

// Option is a function that configures a Verifier instance
type Option func(*config) error

// config holds the settings collected from options before New builds the Verifier
type config struct {
	sources        []sources.Source
	store          store.Store
	unifier        *unify.Unifier
	lookupTimeout  time.Duration
	metrics        *metrics.Metrics
	logger         *zerolog.Logger
	provenanceFile string
	historyLimit   int
	now            func() time.Time
}

// WithSources configures the registries looked up on every verification.
// Registries added later with the same id replace earlier ones.
func WithSources(srcs ...sources.Source) Option {
	return func(c *config) error {
		for _, src := range srcs {
			if src == nil {
				return errors.NewValidationError("sources", nil, "source must not be nil")
			}
		}
		c.sources = append(c.sources, srcs...)
		return nil
	}
}

// WithStore configures where unified properties are upserted.
// Without it an in-memory store is used.
func WithStore(s store.Store) Option {
	return func(c *config) error {
		if s == nil {
			return errors.NewValidationError("store", nil, "store must not be nil")
		}
		c.store = s
		return nil
	}
}

// WithUnifier replaces the default unifier, for example to inject a region table.
func WithUnifier(u *unify.Unifier) Option {
	return func(c *config) error {
		c.unifier = u
		return nil
	}
}

// WithLookupTimeout bounds the concurrent registry lookups of one verification.
func WithLookupTimeout(d time.Duration) Option {
	return func(c *config) error {
		c.lookupTimeout = d
		return nil
	}
}

// WithMetrics records lookups, verifications and store operations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) error {
		c.metrics = m
		return nil
	}
}

// WithLogger sets the logger used when the request context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithProvenanceFile loads field provenance from path on start and saves it
// after every verification.
func WithProvenanceFile(path string) Option {
	return func(c *config) error {
		c.provenanceFile = path
		return nil
	}
}

// WithHistoryLimit caps the provenance entries kept per field. Zero keeps all.
func WithHistoryLimit(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return errors.NewValidationError("historyLimit", n, "must not be negative")
		}
		c.historyLimit = n
		return nil
	}
}

// WithClock overrides the time source used for latency metrics and events.
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		if now != nil {
			c.now = now
		}
		return nil
	}
}
