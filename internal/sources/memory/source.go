// Package memory provides an in-memory registry source for tests and demos.
package memory

import (
	"context"
	"sync"

	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/record"
	"github.com/agentstation/propverify/pkg/types"
)

// Source holds registry records keyed by property id.
type Source struct {
	id types.SourceID

	mu      sync.RWMutex
	records map[string]record.Record
}

// New creates a source for id preloaded with records. Records without a
// propertyId are ignored.
func New(id types.SourceID, records ...record.Record) *Source {
	s := &Source{
		id:      id,
		records: make(map[string]record.Record, len(records)),
	}
	for _, rec := range records {
		s.Put(rec)
	}
	return s
}

// ID returns the registry this source serves.
func (s *Source) ID() types.SourceID {
	return s.id
}

// Put stores a copy of rec under its propertyId, replacing any previous
// record. It reports false when rec has no propertyId.
func (s *Source) Put(rec record.Record) bool {
	id := rec.PropertyID()
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = rec.Clone()
	return true
}

// Remove deletes the record for propertyID.
func (s *Source) Remove(propertyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, propertyID)
}

// Len returns the number of stored records.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Lookup returns a copy of the record for propertyID.
func (s *Source) Lookup(ctx context.Context, propertyID string) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[propertyID]
	if !ok {
		return nil, errors.NewNotFoundError(string(s.id)+" record", propertyID)
	}
	return rec.Clone(), nil
}

// Close is a no-op.
func (s *Source) Close() error {
	return nil
}
