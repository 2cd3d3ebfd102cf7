// Package postgres stores unified properties in PostgreSQL as jsonb documents.
package postgres

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/property"
	"github.com/agentstation/propverify/pkg/types"
)

// Schema creates the unified property table.
const Schema = `
CREATE TABLE IF NOT EXISTS unified_properties (
	property_id  TEXT PRIMARY KEY,
	document     JSONB NOT NULL,
	revision     BIGINT NOT NULL DEFAULT 1,
	generated_at TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertSQL = `
	INSERT INTO unified_properties (property_id, document, revision, generated_at, updated_at)
	VALUES ($1, $2, 1, $3, now())
	ON CONFLICT (property_id) DO UPDATE SET
		document = EXCLUDED.document,
		revision = unified_properties.revision + 1,
		generated_at = EXCLUDED.generated_at,
		updated_at = EXCLUDED.updated_at
	RETURNING revision`

const getSQL = `SELECT document, revision FROM unified_properties WHERE property_id = $1`

// Store is a PostgreSQL-backed unified store.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a store on pool. The pool belongs to the caller.
func New(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the unified property table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return errors.WrapResource("create", "table", "unified_properties", err)
	}
	return nil
}

// Upsert writes p as a full overwrite and returns it with the new revision.
func (s *Store) Upsert(ctx context.Context, p *property.Property) (*property.Property, error) {
	if p == nil || p.PropertyID == "" {
		return nil, errors.NewValidationError("propertyId", nil, "property id is required")
	}

	stored := p.Clone()
	if stored.GeneratedAt.IsZero() {
		stored.GeneratedAt = time.Now().UTC()
	}
	stored.Revision = 0

	doc, err := json.Marshal(stored)
	if err != nil {
		return nil, errors.WrapResource("encode", string(types.ResourceTypeProperty), p.PropertyID, err)
	}

	if err := s.pool.QueryRow(ctx, upsertSQL, p.PropertyID, doc, stored.GeneratedAt).Scan(&stored.Revision); err != nil {
		return nil, errors.WrapResource("upsert", string(types.ResourceTypeProperty), p.PropertyID, err)
	}
	return stored, nil
}

// Get returns the stored record for propertyID.
func (s *Store) Get(ctx context.Context, propertyID string) (*property.Property, error) {
	var (
		doc      []byte
		revision int64
	)
	err := s.pool.QueryRow(ctx, getSQL, propertyID).Scan(&doc, &revision)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NewNotFoundError(string(types.ResourceTypeProperty), propertyID)
	}
	if err != nil {
		return nil, errors.WrapResource("get", string(types.ResourceTypeProperty), propertyID, err)
	}

	var p property.Property
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, errors.WrapResource("decode", string(types.ResourceTypeProperty), propertyID, err)
	}
	p.Revision = revision
	return &p, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close is a no-op; the pool belongs to the caller.
func (s *Store) Close() error {
	return nil
}
