// Package fieldmap translates each source's native field names into the
// canonical vocabulary shared by standardized and unified records.
//
// Only fields whose names differ need an entry. Unmapped fields keep their
// original name so that new upstream fields survive standardization.
package fieldmap

import (
	"maps"
	"slices"

	"github.com/agentstation/propverify/pkg/types"
)

// Table maps a native field name to its canonical name.
type Table map[string]string

// Mapper holds one closed Table per source.
type Mapper struct {
	tables map[types.SourceID]Table
}

// New creates a Mapper over the given tables. The tables are copied.
func New(tables map[types.SourceID]Table) *Mapper {
	m := &Mapper{tables: make(map[types.SourceID]Table, len(tables))}
	for id, t := range tables {
		m.tables[id] = maps.Clone(t)
	}
	return m
}

// Default returns a Mapper over the built-in tables for all four sources.
func Default() *Mapper {
	return New(DefaultTables())
}

// Has reports whether source has a mapping table.
func (m *Mapper) Has(source types.SourceID) bool {
	_, ok := m.tables[source]
	return ok
}

// Table returns a copy of the table for source.
func (m *Mapper) Table(source types.SourceID) (Table, bool) {
	t, ok := m.tables[source]
	if !ok {
		return nil, false
	}
	return maps.Clone(t), true
}

// Canonical returns the canonical name of field for source, or field itself when unmapped.
func (m *Mapper) Canonical(source types.SourceID, field string) string {
	if name, ok := m.tables[source][field]; ok {
		return name
	}
	return field
}

// Sources returns the sources that have tables, sorted.
func (m *Mapper) Sources() []types.SourceID {
	return slices.Sorted(maps.Keys(m.tables))
}
