// Package sources defines the registry lookup interface and a thread-safe
// container for the configured registries.
//
// A Source answers one question: what record does this registry hold for a
// property? Implementations live under internal/sources (memory, file and
// postgres) and return an error matching errors.ErrNotFound when the
// registry has nothing for the property.
//
// Example usage:
//
//	srcs := sources.NewSources()
//	srcs.Set(memory.New(types.DORIS, records...))
//
//	rec, err := srcs.Lookup(ctx, types.DORIS, "PROP-1A2B3C4D")
//	if errors.IsNotFound(err) {
//	    // the registry has no record for the property
//	}
package sources

import (
	"context"
	"slices"
	"sync"

	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/record"
	"github.com/agentstation/propverify/pkg/types"
)

// Source is one registry that can be queried by property id.
type Source interface {
	// ID returns the registry this source serves
	ID() types.SourceID

	// Lookup returns the raw record for propertyID. It returns an error
	// matching errors.ErrNotFound when the registry has no record.
	Lookup(ctx context.Context, propertyID string) (record.Record, error)

	// Close releases any resources held by the source
	Close() error
}

// Pinger is implemented by sources backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sources is a thread-safe container for managing the configured registries.
type Sources struct {
	mu      sync.RWMutex
	sources map[types.SourceID]Source
}

// NewSources creates a new Sources instance holding srcs.
func NewSources(srcs ...Source) *Sources {
	s := &Sources{
		sources: make(map[types.SourceID]Source),
	}
	for _, src := range srcs {
		s.Set(src)
	}
	return s
}

// Get returns a source by ID.
func (s *Sources) Get(id types.SourceID) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, found := s.sources[id]
	return src, found
}

// Set registers src under its own ID, replacing any previous source.
func (s *Sources) Set(src Source) {
	if src == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[src.ID()] = src
}

// Delete deletes a source by ID.
func (s *Sources) Delete(id types.SourceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, id)
}

// Len returns the number of sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}

// List returns all sources in precedence order, followed by any unknown
// registries sorted by ID.
func (s *Sources) List() []Source {
	ids := s.IDs()
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]Source, 0, len(ids))
	for _, id := range ids {
		list = append(list, s.sources[id])
	}
	return list
}

// IDs returns all source IDs in precedence order.
func (s *Sources) IDs() []types.SourceID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]types.SourceID, 0, len(s.sources))
	for id := range s.sources {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIDs)
	return ids
}

// Lookup queries the registry id for propertyID.
func (s *Sources) Lookup(ctx context.Context, id types.SourceID, propertyID string) (record.Record, error) {
	src, ok := s.Get(id)
	if !ok {
		return nil, errors.NewNotFoundError("source", id.String())
	}
	return src.Lookup(ctx, propertyID)
}

// Ping checks every source that implements Pinger.
func (s *Sources) Ping(ctx context.Context) error {
	for _, src := range s.List() {
		if p, ok := src.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return errors.WrapResource("ping", "source", src.ID().String(), err)
			}
		}
	}
	return nil
}

// Close closes every source and returns the first error.
func (s *Sources) Close() error {
	var first error
	for _, src := range s.List() {
		if err := src.Close(); err != nil && first == nil {
			first = errors.WrapResource("close", "source", src.ID().String(), err)
		}
	}
	return first
}

func compareIDs(a, b types.SourceID) int {
	order := types.SourceIDs()
	ia, ib := slices.Index(order, a), slices.Index(order, b)
	switch {
	case ia >= 0 && ib >= 0:
		return ia - ib
	case ia >= 0:
		return -1
	case ib >= 0:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
