// Package propverify verifies a property against the land and company
// registries that hold records for it.
//
// A Verifier looks the property up in every configured registry at once,
// unifies the records by field precedence, upserts the unified record and
// notifies hooks:
//
//	v, err := propverify.New(propverify.WithSources(doris, dlr, cersai, mca21))
//	if err != nil {
//		return err
//	}
//	res, err := v.Verify(ctx, "PROP-00000001")
//
// Verification fails with an error matching errors.ErrNoDataFound when no
// registry holds a record for the property.
package propverify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/propverify/internal/lookup"
	"github.com/agentstation/propverify/internal/metrics"
	"github.com/agentstation/propverify/internal/store"
	"github.com/agentstation/propverify/internal/store/memory"
	"github.com/agentstation/propverify/pkg/constants"
	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/logging"
	"github.com/agentstation/propverify/pkg/property"
	"github.com/agentstation/propverify/pkg/provenance"
	"github.com/agentstation/propverify/pkg/sources"
	"github.com/agentstation/propverify/pkg/types"
	"github.com/agentstation/propverify/pkg/unify"
)

// Verification statuses recorded in metrics.
const (
	StatusUnified = "unified"
	StatusNoData  = "no_data"
	StatusError   = "error"
)

// Result is the outcome of one verification.
type Result struct {
	// Property is the stored record, carrying the revision assigned by the store
	Property *property.Property `json:"property" yaml:"property"`

	// Provenance explains which registry supplied each field
	Provenance provenance.Map `json:"provenance" yaml:"provenance"`

	// Latencies holds the lookup duration of each registry
	Latencies map[types.SourceID]time.Duration `json:"-" yaml:"-"`
}

// Report renders the provenance of the result.
func (r *Result) Report() *provenance.Report {
	return provenance.GenerateReport(r.Provenance)
}

// Verifier runs lookup, unification and upsert for properties.
type Verifier struct {
	sources        *sources.Sources
	fetcher        *lookup.Fetcher
	unifier        *unify.Unifier
	store          store.Store
	metrics        *metrics.Metrics
	tracker        provenance.Tracker
	provenanceFile string
	logger         *zerolog.Logger
	now            func() time.Time
	hooks          *hooks

	saveMu sync.Mutex
}

// New creates a Verifier with the given options.
func New(opts ...Option) (*Verifier, error) {
	cfg := &config{
		lookupTimeout: constants.LookupTimeout,
		historyLimit:  constants.ProvenanceHistoryLimit,
		now:           time.Now,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.Default()
	}

	srcs := sources.NewSources(cfg.sources...)
	st := cfg.store
	if st == nil {
		st = memory.New()
	}
	u := cfg.unifier
	if u == nil {
		u = unify.New(unify.WithLogger(logger))
	}

	v := &Verifier{
		sources: srcs,
		fetcher: lookup.New(srcs,
			lookup.WithTimeout(cfg.lookupTimeout),
			lookup.WithMetrics(cfg.metrics),
			lookup.WithLogger(logger),
		),
		unifier:        u,
		store:          st,
		metrics:        cfg.metrics,
		tracker:        provenance.NewTrackerWithLimit(true, cfg.historyLimit),
		provenanceFile: cfg.provenanceFile,
		logger:         logger,
		now:            cfg.now,
		hooks:          newHooks(),
	}

	if v.provenanceFile != "" {
		pf, err := provenance.Load(v.provenanceFile)
		if err != nil {
			return nil, fmt.Errorf("loading provenance: %w", err)
		}
		if pf != nil {
			v.tracker.Merge(pf.Provenance)
		}
	}

	return v, nil
}

// Verify looks propertyID up in every registry, unifies the records found and
// upserts the result. The stored record replaces any previous one.
func (v *Verifier) Verify(ctx context.Context, propertyID string) (*Result, error) {
	start := v.now()
	logger := logging.FromContextOr(ctx, v.logger).With().Str("property_id", propertyID).Logger()

	res, err := v.verify(ctx, propertyID)
	elapsed := v.now().Sub(start)
	if err != nil {
		status := StatusError
		if errors.IsNoDataFound(err) {
			status = StatusNoData
		}
		v.metrics.ObserveVerify(status, elapsed)
		logger.Warn().Err(err).Str("status", status).Msg("Verification failed")
		v.hooks.triggerFailed(propertyID, err)
		return nil, err
	}

	v.metrics.ObserveVerify(StatusUnified, elapsed)
	v.metrics.ObserveSourcesIntegrated(res.Property.DataSourcesIntegrated.Count())
	logger.Info().
		Int64("revision", res.Property.Revision).
		Int("sources", res.Property.DataSourcesIntegrated.Count()).
		Dur("duration", elapsed).
		Msg("Property verified")

	v.hooks.triggerUnified(res.Property)
	return res, nil
}

func (v *Verifier) verify(ctx context.Context, propertyID string) (*Result, error) {
	fetched, err := v.fetcher.Fetch(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	unified, err := v.unifier.Unify(unify.InputsFrom(fetched.PropertyID, fetched.Records))
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, constants.StoreTimeout)
	defer cancel()

	stored, err := v.store.Upsert(storeCtx, unified.Property)
	v.metrics.IncrementStore("upsert", err)
	if err != nil {
		return nil, errors.WrapResource("upsert", "property", unified.Property.PropertyID, err)
	}

	v.tracker.Merge(unified.Provenance)
	v.saveProvenance(ctx)

	return &Result{
		Property:   stored,
		Provenance: unified.Provenance,
		Latencies:  fetched.Latencies,
	}, nil
}

// Property returns the stored record for propertyID without contacting the
// registries. It fails with an error matching errors.ErrNotFound when the
// property was never verified.
func (v *Verifier) Property(ctx context.Context, propertyID string) (*property.Property, error) {
	storeCtx, cancel := context.WithTimeout(ctx, constants.StoreTimeout)
	defer cancel()

	p, err := v.store.Get(storeCtx, propertyID)
	v.metrics.IncrementStore("get", err)
	return p, err
}

// Provenance returns the field provenance recorded for propertyID across
// verifications, keyed by field path. It is empty for unknown properties.
func (v *Verifier) Provenance(propertyID string) map[string][]provenance.Provenance {
	return v.tracker.FindByResource(types.ResourceTypeProperty, propertyID)
}

// Report returns the provenance report of propertyID across verifications.
// It reports false for properties that were never verified.
func (v *Verifier) Report(propertyID string) (provenance.ResourceProvenance, bool) {
	fields := v.Provenance(propertyID)
	if len(fields) == 0 {
		return provenance.ResourceProvenance{}, false
	}
	m := make(provenance.Map, len(fields))
	for field, entries := range fields {
		m[provenance.MakeKey(types.ResourceTypeProperty, propertyID, field)] = entries
	}
	res, ok := provenance.GenerateReport(m).Resources[fmt.Sprintf("%s:%s", types.ResourceTypeProperty, propertyID)]
	return res, ok
}

// Sources returns the configured registries.
func (v *Verifier) Sources() *sources.Sources {
	return v.sources
}

// Store returns the unified store.
func (v *Verifier) Store() store.Store {
	return v.store
}

// Ping checks that every registry and the store that can be pinged are reachable.
func (v *Verifier) Ping(ctx context.Context) error {
	if err := v.sources.Ping(ctx); err != nil {
		return err
	}
	if p, ok := v.store.(store.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return errors.WrapResource("ping", "store", "", err)
		}
	}
	return nil
}

// OnPropertyUnified registers a callback for every stored property.
func (v *Verifier) OnPropertyUnified(fn PropertyUnifiedHook) {
	v.hooks.OnPropertyUnified(fn)
}

// OnVerifyFailed registers a callback for every failed verification.
func (v *Verifier) OnVerifyFailed(fn VerifyFailedHook) {
	v.hooks.OnVerifyFailed(fn)
}

// Close releases the registries and the store.
func (v *Verifier) Close() error {
	srcErr := v.sources.Close()
	storeErr := v.store.Close()
	if srcErr != nil {
		return srcErr
	}
	return storeErr
}

func (v *Verifier) saveProvenance(ctx context.Context) {
	if v.provenanceFile == "" {
		return
	}
	v.saveMu.Lock()
	defer v.saveMu.Unlock()
	if err := provenance.Save(v.provenanceFile, v.tracker.Map()); err != nil {
		logging.FromContextOr(ctx, v.logger).Warn().
			Err(err).
			Str("path", v.provenanceFile).
			Msg("Failed to save provenance")
	}
}
