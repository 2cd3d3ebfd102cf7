// Package adapter standardizes one source record: native field names are
// renamed through the field mapper and every value is normalized.
package adapter

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/fieldmap"
	"github.com/agentstation/propverify/pkg/logging"
	"github.com/agentstation/propverify/pkg/normalize"
	"github.com/agentstation/propverify/pkg/record"
	"github.com/agentstation/propverify/pkg/types"
)

// DefaultMetadataFields are storage-internal keys dropped during standardization.
var DefaultMetadataFields = []string{"_id", "__v"}

// Adapter applies the field mapper and value normalizer to source records.
// It holds no mutable state and is safe for concurrent use.
type Adapter struct {
	mapper   *fieldmap.Mapper
	metadata map[string]struct{}
	logger   *zerolog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithMapper replaces the built-in field tables.
func WithMapper(m *fieldmap.Mapper) Option {
	return func(a *Adapter) {
		if m != nil {
			a.mapper = m
		}
	}
}

// WithLogger sets the logger used for unmapped-source warnings.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetadataFields replaces the set of storage-internal keys to drop.
func WithMetadataFields(fields ...string) Option {
	return func(a *Adapter) {
		a.metadata = toSet(fields)
	}
}

// New creates an Adapter with the default field tables.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		mapper:   fieldmap.Default(),
		metadata: toSet(DefaultMetadataFields),
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MapSourceData standardizes rec as a record of source.
//
// A nil rec yields nil, meaning the source contributed nothing. A source
// without a mapping table is logged and rec is returned unchanged. Otherwise
// every non-metadata field is renamed to its canonical name; fields whose
// native name contains "date" are normalized as dates and all others are
// standardized. Unknown fields keep their original name.
func (a *Adapter) MapSourceData(rec record.Record, source types.SourceID) record.Record {
	if rec == nil {
		return nil
	}

	if !a.mapper.Has(source) {
		a.logger.Warn().
			Err(errors.NewUnmappedSourceError(string(source))).
			Str("source", string(source)).
			Int("fields", len(rec)).
			Msg("No field mapping for source, passing record through unchanged")
		return rec
	}

	out := make(record.Record, len(rec))
	for _, field := range rec.Keys() {
		if _, skip := a.metadata[field]; skip {
			continue
		}

		value := rec[field]
		canonical := a.mapper.Canonical(source, field)
		if isDateField(field) {
			out[canonical] = normalize.NormalizeDate(value)
		} else {
			out[canonical] = normalize.StandardizeValue(value)
		}
	}
	return out
}

// MapSourceData standardizes rec with a default Adapter.
func MapSourceData(rec record.Record, source types.SourceID) record.Record {
	return New().MapSourceData(rec, source)
}

func isDateField(name string) bool {
	return strings.Contains(strings.ToLower(name), "date")
}

func toSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
