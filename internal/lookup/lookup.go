// Package lookup fans a property id out to every configured registry and
// collects the records they hold.
package lookup

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/propverify/internal/metrics"
	"github.com/agentstation/propverify/pkg/constants"
	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/logging"
	"github.com/agentstation/propverify/pkg/record"
	"github.com/agentstation/propverify/pkg/sources"
	"github.com/agentstation/propverify/pkg/types"
)

// Result holds the records found for one property. Registries without a
// record are absent from Records.
type Result struct {
	PropertyID string
	Records    map[types.SourceID]record.Record
	Latencies  map[types.SourceID]time.Duration
	FetchedAt  time.Time
}

// Found returns the registries that held a record, in precedence order.
func (r *Result) Found() []types.SourceID {
	var out []types.SourceID
	for _, id := range types.SourceIDs() {
		if r.Records[id] != nil {
			out = append(out, id)
		}
	}
	return out
}

// Fetcher queries all registries concurrently.
type Fetcher struct {
	sources *sources.Sources
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds each Fetch call. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMetrics records per-source latency and outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Fetcher over srcs.
func New(srcs *sources.Sources, opts ...Option) *Fetcher {
	f := &Fetcher{
		sources: srcs,
		timeout: constants.LookupTimeout,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch looks propertyID up in every registry and waits for all of them.
// A registry reporting not-found contributes no record. Any other failure
// cancels the remaining lookups and fails the whole fetch.
func (f *Fetcher) Fetch(ctx context.Context, propertyID string) (*Result, error) {
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return nil, errors.NewValidationError("propertyId", propertyID, "property id is required")
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	logger := logging.FromContextOr(ctx, f.logger).With().Str("property_id", propertyID).Logger()
	ctx = logging.WithLogger(ctx, &logger)

	srcs := f.sources.List()
	records := make([]record.Record, len(srcs))
	latencies := make([]time.Duration, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range srcs {
		g.Go(func() error {
			id := src.ID().String()
			sctx := logging.WithSource(gctx, id)

			start := time.Now()
			rec, err := src.Lookup(sctx, propertyID)
			latencies[i] = time.Since(start)

			switch {
			case err == nil:
				f.metrics.ObserveLookup(id, metrics.OutcomeFound, latencies[i])
				records[i] = rec
				return nil
			case errors.IsNotFound(err):
				f.metrics.ObserveLookup(id, metrics.OutcomeNotFound, latencies[i])
				logging.FromContext(sctx).Debug().Msg("No record in registry")
				return nil
			default:
				f.metrics.ObserveLookup(id, metrics.OutcomeError, latencies[i])
				return lookupError(src.ID(), propertyID, f.timeout, err)
			}
		})
	}

	// Wait for all goroutines with early cancellation on first failure
	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Msg("Registry lookup failed")
		return nil, err
	}

	res := &Result{
		PropertyID: propertyID,
		Records:    make(map[types.SourceID]record.Record, len(srcs)),
		Latencies:  make(map[types.SourceID]time.Duration, len(srcs)),
		FetchedAt:  time.Now(),
	}
	for i, src := range srcs {
		res.Latencies[src.ID()] = latencies[i]
		if records[i] != nil {
			res.Records[src.ID()] = records[i]
		}
	}

	logger.Debug().
		Int("sources", len(srcs)).
		Int("found", len(res.Records)).
		Msg("Registry lookups complete")

	return res, nil
}

func lookupError(source types.SourceID, propertyID string, timeout time.Duration, err error) error {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewTimeoutError("lookup "+source.String(), timeout.String(), "registry did not answer in time")
	case stderrors.Is(err, context.Canceled):
		return errors.WrapResource("lookup", source.String()+" record", propertyID, stderrors.Join(errors.ErrCanceled, err))
	default:
		return errors.WrapResource("lookup", source.String()+" record", propertyID, err)
	}
}
