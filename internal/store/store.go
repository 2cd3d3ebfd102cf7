// Package store defines persistence for unified property records.
//
// Writes are full overwrites keyed by propertyId. Concurrent writers for the
// same property are last-write-wins; every write increments the record's
// revision so readers can tell that an overwrite happened.
package store

import (
	"context"

	"github.com/agentstation/propverify/pkg/property"
)

// Store persists unified properties.
type Store interface {
	// Upsert creates or replaces the record for p.PropertyID and returns it
	// with the revision assigned by the store.
	Upsert(ctx context.Context, p *property.Property) (*property.Property, error)

	// Get returns the record for propertyID, or an error matching
	// errors.ErrNotFound.
	Get(ctx context.Context, propertyID string) (*property.Property, error)

	// Close releases resources held by the store
	Close() error
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
