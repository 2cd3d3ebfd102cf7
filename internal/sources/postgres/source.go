// Package postgres serves registry records from PostgreSQL. Each registry
// has its own table, <source>_records, holding the registry document as jsonb:
//
//	CREATE TABLE doris_records (
//	    property_id TEXT PRIMARY KEY,
//	    document    JSONB NOT NULL,
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
package postgres

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/record"
	"github.com/agentstation/propverify/pkg/types"
)

// Source looks up one registry table.
type Source struct {
	id    types.SourceID
	pool  *pgxpool.Pool
	table string
}

// New creates a source for id on pool. The pool is shared and is not closed
// by the source.
func New(pool *pgxpool.Pool, id types.SourceID) (*Source, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &Source{
		id:    id,
		pool:  pool,
		table: TableName(id),
	}, nil
}

// NewAll creates a source for every known registry on pool.
func NewAll(pool *pgxpool.Pool) ([]*Source, error) {
	ids := types.SourceIDs()
	out := make([]*Source, 0, len(ids))
	for _, id := range ids {
		src, err := New(pool, id)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

// TableName returns the quoted table holding the records of id.
func TableName(id types.SourceID) string {
	return pgx.Identifier{id.String() + "_records"}.Sanitize()
}

// ID returns the registry this source serves.
func (s *Source) ID() types.SourceID {
	return s.id
}

// Lookup returns the document stored for propertyID.
func (s *Source) Lookup(ctx context.Context, propertyID string) (record.Record, error) {
	query := fmt.Sprintf(`SELECT document FROM %s WHERE property_id = $1`, s.table)

	var doc map[string]any
	err := s.pool.QueryRow(ctx, query, propertyID).Scan(&doc)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NewNotFoundError(string(s.id)+" record", propertyID)
	}
	if err != nil {
		return nil, errors.WrapResource("lookup", string(s.id)+" record", propertyID, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return record.Record(doc), nil
}

// Put inserts or replaces the document for the record's propertyId.
func (s *Source) Put(ctx context.Context, rec record.Record) error {
	id := rec.PropertyID()
	if id == "" {
		return errors.NewValidationError(record.PropertyIDField, nil, "record has no propertyId")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (property_id, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (property_id) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at`, s.table)

	if _, err := s.pool.Exec(ctx, query, id, map[string]any(rec)); err != nil {
		return errors.WrapResource("put", string(s.id)+" record", id, err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Source) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close is a no-op; the pool belongs to the caller.
func (s *Source) Close() error {
	return nil
}

// EnsureSchema creates the registry tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, id := range types.SourceIDs() {
		ddl := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				property_id TEXT PRIMARY KEY,
				document    JSONB NOT NULL,
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, TableName(id))
		if _, err := tx.Exec(ctx, ddl); err != nil {
			return errors.WrapResource("create", "table", TableName(id), err)
		}
	}
	return tx.Commit(ctx)
}
