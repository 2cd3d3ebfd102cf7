// Package record defines the generic key/value shape shared by raw source
// records and standardized records.
//
// Records are not bound to a schema: adapters walk whatever keys
// a source returns, rename the ones they know and keep the rest.
package record

import (
	"maps"
	"slices"
)

// PropertyIDField is the join key every source record carries.
const PropertyIDField = "propertyId"

// Record is a flat mapping of field name to value. Values are strings, bools,
// numbers, times, or opaque nested values that are passed through untouched.
type Record map[string]any

// Keys returns the record's field names in sorted order so that iteration,
// logging and provenance output are deterministic.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// Get returns the value stored under key and whether it was present.
func (r Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	return v, ok
}

// String returns the value under key when it is a string.
func (r Record) String(key string) (string, bool) {
	v, ok := r.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// PropertyID returns the record's join key, or "" when it is missing or not a string.
func (r Record) PropertyID() string {
	s, _ := r.String(PropertyIDField)
	return s
}

// Clone returns a shallow copy of the record. A nil record clones to nil.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}
