// Package app provides the application context and dependency management
// for the propverify CLI. It centralizes configuration, logging and the
// lifecycle of the registries, stores and event bus the verifier runs on.
package app

import (
	"context"
	"io"
	"path/filepath"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/agentstation/propverify"
	"github.com/agentstation/propverify/internal/events/amqp"
	"github.com/agentstation/propverify/internal/metrics"
	filesrc "github.com/agentstation/propverify/internal/sources/file"
	memsrc "github.com/agentstation/propverify/internal/sources/memory"
	pgsrc "github.com/agentstation/propverify/internal/sources/postgres"
	"github.com/agentstation/propverify/internal/store"
	memstore "github.com/agentstation/propverify/internal/store/memory"
	pgstore "github.com/agentstation/propverify/internal/store/postgres"
	rediscache "github.com/agentstation/propverify/internal/store/redis"
	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/sources"
	"github.com/agentstation/propverify/pkg/types"
)

// ProvenanceFileName is the file under the data directory that keeps
// field provenance between runs.
const ProvenanceFileName = "provenance.yaml"

// App represents the propverify application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	out    io.Writer

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Lazily created infrastructure
	mu        sync.RWMutex
	verifier  *propverify.Verifier
	pool      *pgxpool.Pool
	redis     *redis.Client
	publisher *amqp.Publisher
}

// Option configures an App.
type Option func(*App) error

// WithConfig replaces the configuration loaded from the environment.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewValidationError("config", nil, "cannot be nil")
		}
		a.config = config
		logger := NewLogger(config)
		a.logger = &logger
		return nil
	}
}

// WithLogger sets the application logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		if logger != nil {
			a.logger = logger
		}
		return nil
	}
}

// WithOutput redirects command output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	app.registry = metrics.NewRegistry()
	app.metrics = metrics.New(app.registry)

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Registry returns the Prometheus registry the verifier reports to.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// Publisher returns the AMQP event publisher, or nil when no broker is configured.
func (a *App) Publisher() (*amqp.Publisher, error) {
	if a.config.AMQPURL == "" {
		return nil, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.publisher != nil {
		return a.publisher, nil
	}

	pub, err := amqp.Dial(amqp.Config{
		URL:      a.config.AMQPURL,
		Exchange: a.config.AMQPExchange,
		Logger:   a.logger,
	})
	if err != nil {
		return nil, errors.WrapResource("connect", "amqp", a.config.AMQPExchange, err)
	}
	a.publisher = pub
	return pub, nil
}

// Verifier returns the verifier, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Verifier(ctx context.Context) (*propverify.Verifier, error) {
	a.mu.RLock()
	if a.verifier != nil {
		v := a.verifier
		a.mu.RUnlock()
		return v, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.verifier != nil {
		return a.verifier, nil
	}

	srcs, st, err := a.buildBackends(ctx)
	if err != nil {
		a.closeConnections()
		return nil, err
	}

	opts := []propverify.Option{
		propverify.WithSources(srcs...),
		propverify.WithStore(st),
		propverify.WithLookupTimeout(a.config.LookupTimeout),
		propverify.WithMetrics(a.metrics),
		propverify.WithLogger(a.logger),
	}
	if a.config.DataDir != "" {
		opts = append(opts, propverify.WithProvenanceFile(filepath.Join(a.config.DataDir, ProvenanceFileName)))
	}

	v, err := propverify.New(opts...)
	if err != nil {
		a.closeConnections()
		return nil, errors.WrapResource("create", "verifier", "", err)
	}

	a.verifier = v
	return v, nil
}

// buildBackends picks the registries and the store from the configuration:
// PostgreSQL when a database URL is set, YAML files under the data
// directory otherwise, and empty in-memory registries as a last resort.
// Redis, when configured, caches whichever store was chosen.
func (a *App) buildBackends(ctx context.Context) ([]sources.Source, store.Store, error) {
	var (
		srcs []sources.Source
		st   store.Store
	)

	switch {
	case a.config.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, a.config.DatabaseURL)
		if err != nil {
			return nil, nil, errors.WrapResource("connect", "database", "", err)
		}
		a.pool = pool

		if err := pgsrc.EnsureSchema(ctx, pool); err != nil {
			return nil, nil, err
		}
		pgSources, err := pgsrc.NewAll(pool)
		if err != nil {
			return nil, nil, err
		}
		for _, s := range pgSources {
			srcs = append(srcs, s)
		}

		pgStore, err := pgstore.New(pool)
		if err != nil {
			return nil, nil, err
		}
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		st = pgStore

	case a.config.DataDir != "":
		for _, s := range filesrc.NewAll(a.config.DataDir) {
			srcs = append(srcs, s)
		}

	default:
		a.logger.Warn().Msg("No database_url or data_dir configured, registries are empty")
		for _, id := range types.SourceIDs() {
			srcs = append(srcs, memsrc.New(id))
		}
	}

	if st == nil {
		st = memstore.New()
	}

	if a.config.RedisURL != "" {
		redisOpts, err := redis.ParseURL(a.config.RedisURL)
		if err != nil {
			return nil, nil, errors.NewConfigError("redis", "invalid redis_url", err)
		}
		a.redis = redis.NewClient(redisOpts)
		st = rediscache.New(st, a.redis,
			rediscache.WithTTL(a.config.CacheTTL),
			rediscache.WithMetrics(a.metrics),
			rediscache.WithLogger(a.logger),
		)
	}

	return srcs, st, nil
}

// Shutdown releases the verifier and every connection the app opened.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var firstErr error
	if a.verifier != nil {
		if err := a.verifier.Close(); err != nil {
			firstErr = err
		}
		a.verifier = nil
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.publisher = nil
	}
	a.closeConnections()

	if firstErr != nil {
		a.logger.Warn().Err(firstErr).Msg("Shutdown completed with errors")
	}
	if err := ctx.Err(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// closeConnections closes the pooled clients. Callers hold a.mu.
func (a *App) closeConnections() {
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}
