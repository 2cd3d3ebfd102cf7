// Package authority defines which registry is authoritative for each field of
// a unified property, and in which order the others are consulted.
package authority

import (
	"cmp"
	"path/filepath"
	"slices"

	"github.com/agentstation/propverify/pkg/types"
)

// Authority determines which source is authoritative for each field
type Authority interface {
	// Find returns the highest priority authority for a specific field
	Find(fieldPath string, resourceType types.ResourceType) *Field

	// Chain returns every source that may supply a field, most authoritative first
	Chain(fieldPath string, resourceType types.ResourceType) []Field

	// List returns all authorities for a resource type
	List(resourceType types.ResourceType) []Field
}

// Field defines source priority for a specific field
type Field struct {
	Path     string         `json:"path" yaml:"path"`         // e.g., "property.district", "owner.*"
	Source   types.SourceID `json:"source" yaml:"source"`     // Which source is authoritative
	Priority int            `json:"priority" yaml:"priority"` // Priority (higher = more authoritative)
}

// authorities provides standard field authorities
type authorities struct {
	propertyAuthorities []Field
}

// New creates an Authority with the standard property precedence rules
func New() Authority {
	return &authorities{
		propertyAuthorities: defaultPropertyAuthorities(),
	}
}

// NewWith creates an Authority from caller supplied property rules
func NewWith(fields []Field) Authority {
	return &authorities{
		propertyAuthorities: slices.Clone(fields),
	}
}

// Find returns the authority configuration for a specific field
func (da *authorities) Find(fieldPath string, resourceType types.ResourceType) *Field {
	return ByField(fieldPath, da.List(resourceType))
}

// Chain returns the precedence chain for a specific field
func (da *authorities) Chain(fieldPath string, resourceType types.ResourceType) []Field {
	return ChainByField(fieldPath, da.List(resourceType))
}

// List returns all authorities for a resource type
func (da *authorities) List(resourceType types.ResourceType) []Field {
	switch resourceType {
	case types.ResourceTypeProperty:
		return da.propertyAuthorities
	default:
		return nil
	}
}

// ByField returns the highest priority authority for a given field path
func ByField(fieldPath string, authorities []Field) *Field {
	var bestMatch *Field
	var bestPriority int
	var bestMatchLength int

	for i, auth := range authorities {
		if MatchesPattern(fieldPath, auth.Path) {
			// Prioritize by: 1) priority, 2) pattern specificity (length), 3) order
			patternLength := len(auth.Path)
			if bestMatch == nil || auth.Priority > bestPriority ||
				(auth.Priority == bestPriority && patternLength > bestMatchLength) {
				bestMatch = &authorities[i]
				bestPriority = auth.Priority
				bestMatchLength = patternLength
			}
		}
	}

	return bestMatch
}

// ChainByField returns one entry per source that matches fieldPath, ordered by
// priority then pattern specificity. When a source matches several patterns
// the best of them is kept.
func ChainByField(fieldPath string, authorities []Field) []Field {
	best := make(map[types.SourceID]Field)
	var order []types.SourceID

	for _, auth := range authorities {
		if !MatchesPattern(fieldPath, auth.Path) {
			continue
		}
		current, seen := best[auth.Source]
		if !seen {
			order = append(order, auth.Source)
		}
		if !seen || outranks(auth, current) {
			best[auth.Source] = auth
		}
	}

	chain := make([]Field, 0, len(order))
	for _, source := range order {
		chain = append(chain, best[source])
	}
	slices.SortStableFunc(chain, func(a, b Field) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(len(b.Path), len(a.Path))
	})
	return chain
}

func outranks(a, b Field) bool {
	return a.Priority > b.Priority || (a.Priority == b.Priority && len(a.Path) > len(b.Path))
}

// MatchesPattern checks if a field path matches a pattern (supports * wildcards)
func MatchesPattern(fieldPath, pattern string) bool {
	// Handle exact matches
	if fieldPath == pattern {
		return true
	}

	// Handle simple wildcard at the end
	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(fieldPath) >= len(prefix) && fieldPath[:len(prefix)] == prefix
	}

	// Handle filepath.Match patterns
	matched, err := filepath.Match(pattern, fieldPath)
	if err != nil {
		return false
	}
	return matched
}

// FilterAuthoritiesBySource returns only the authorities for a specific source
func FilterAuthoritiesBySource(authorities []Field, source types.SourceID) []Field {
	var filtered []Field
	for _, auth := range authorities {
		if auth.Source == source {
			filtered = append(filtered, auth)
		}
	}
	return filtered
}

// defaultPropertyAuthorities returns the default field authorities for unified properties
func defaultPropertyAuthorities() []Field {
	return []Field{
		// Join key - first registry in precedence order
		{Path: "propertyId", Source: types.DORIS, Priority: 100},
		{Path: "propertyId", Source: types.DLR, Priority: 90},
		{Path: "propertyId", Source: types.CERSAI, Priority: 80},
		{Path: "propertyId", Source: types.MCA21, Priority: 70},

		// Registration domain - the deed registry is truth
		{Path: "property.registrationNumber", Source: types.DORIS, Priority: 100},
		{Path: "property.registrationNumber", Source: types.DLR, Priority: 80},
		{Path: "property.registrationDate", Source: types.DORIS, Priority: 100},
		{Path: "property.registrationDate", Source: types.DLR, Priority: 80},
		{Path: "property.sro", Source: types.DORIS, Priority: 100},
		{Path: "property.sro", Source: types.DLR, Priority: 80},

		// Land record and mutation domain - land records are truth, the deed as fallback
		{Path: "property.khasraNumber", Source: types.DLR, Priority: 100},
		{Path: "property.khasraNumber", Source: types.DORIS, Priority: 90},
		{Path: "property.khataNumber", Source: types.DLR, Priority: 100},
		{Path: "property.khataNumber", Source: types.DORIS, Priority: 90},
		{Path: "property.surveyNumber", Source: types.DLR, Priority: 100},
		{Path: "property.surveyNumber", Source: types.DORIS, Priority: 90},
		{Path: "property.plotNumber", Source: types.DLR, Priority: 100},
		{Path: "property.plotNumber", Source: types.DORIS, Priority: 90},
		{Path: "property.tehsil", Source: types.DLR, Priority: 100},
		{Path: "property.tehsil", Source: types.DORIS, Priority: 90},
		{Path: "property.village", Source: types.DLR, Priority: 100},
		{Path: "property.village", Source: types.DORIS, Priority: 90},
		{Path: "property.mutationStatus", Source: types.DLR, Priority: 100},
		{Path: "property.mutationStatus", Source: types.DORIS, Priority: 90},
		{Path: "property.mutationDate", Source: types.DLR, Priority: 100},
		{Path: "property.mutationDate", Source: types.DORIS, Priority: 90},
		{Path: "property.lastUpdatedDate", Source: types.DLR, Priority: 100},
		{Path: "property.lastUpdatedDate", Source: types.DORIS, Priority: 90},

		// Descriptive fields - deed first, land record as fallback
		{Path: "property.propertyType", Source: types.DORIS, Priority: 100},
		{Path: "property.propertyType", Source: types.DLR, Priority: 90},
		{Path: "property.areaSize", Source: types.DORIS, Priority: 100},
		{Path: "property.areaSize", Source: types.DLR, Priority: 90},
		{Path: "property.propertyAddress", Source: types.DORIS, Priority: 100},
		{Path: "property.propertyAddress", Source: types.DLR, Priority: 90},
		{Path: "property.stateCode", Source: types.DORIS, Priority: 100},
		{Path: "property.stateCode", Source: types.DLR, Priority: 90},
		{Path: "property.district", Source: types.DORIS, Priority: 100},
		{Path: "property.district", Source: types.DLR, Priority: 90},

		// Sections owned by a single registry
		{Path: "owner.*", Source: types.DORIS, Priority: 100},
		{Path: "encumbrance.*", Source: types.CERSAI, Priority: 100},
		{Path: "companyDetails.*", Source: types.MCA21, Priority: 100},
	}
}
