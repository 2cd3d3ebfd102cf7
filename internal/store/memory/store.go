// Package memory provides an in-memory unified store.
package memory

import (
	"context"
	"sync"

	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/property"
	"github.com/agentstation/propverify/pkg/types"
)

// Store keeps unified properties in a map.
type Store struct {
	mu         sync.RWMutex
	properties map[string]*property.Property
}

// New creates an empty store.
func New() *Store {
	return &Store{
		properties: make(map[string]*property.Property),
	}
}

// Upsert replaces the record for p.PropertyID and bumps its revision.
func (s *Store) Upsert(ctx context.Context, p *property.Property) (*property.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == nil || p.PropertyID == "" {
		return nil, errors.NewValidationError("propertyId", nil, "property id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := p.Clone()
	stored.Revision = 1
	if prev, ok := s.properties[p.PropertyID]; ok {
		stored.Revision = prev.Revision + 1
	}
	s.properties[p.PropertyID] = stored
	return stored.Clone(), nil
}

// Get returns a copy of the record for propertyID.
func (s *Store) Get(ctx context.Context, propertyID string) (*property.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[propertyID]
	if !ok {
		return nil, errors.NewNotFoundError(string(types.ResourceTypeProperty), propertyID)
	}
	return p.Clone(), nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.properties)
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
