// Package provenance provides field-level tracking of which registry supplied
// each value of a unified property.
package provenance

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agentstation/propverify/pkg/types"
)

// Selection reasons recorded on a Provenance entry.
const (
	// ReasonAuthority means the most authoritative source supplied the value.
	ReasonAuthority = "authority"
	// ReasonFallback means a less authoritative source supplied the value.
	ReasonFallback = "fallback"
	// ReasonDefault means no source supplied a value and the sentinel was used.
	ReasonDefault = "default"
	// ReasonDerived means the value was computed from another field.
	ReasonDerived = "derived"
)

// Provenance tracks the origin of a field value.
type Provenance struct {
	Source     types.SourceID `json:"source,omitempty" yaml:"source,omitempty"` // Source that provided the value, empty for defaults
	Field      string         `json:"field" yaml:"field"`                       // Canonical field the value was read from
	Value      any            `json:"value" yaml:"value"`                       // The actual value
	Timestamp  time.Time      `json:"timestamp" yaml:"timestamp"`               // When the value was set
	Priority   int            `json:"priority,omitempty" yaml:"priority,omitempty"`
	Reason     string         `json:"reason" yaml:"reason"` // Reason for selecting this value
	Candidates []Candidate    `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

// Candidate is a value offered by one source for a field.
type Candidate struct {
	Source types.SourceID `json:"source" yaml:"source"`
	Value  any            `json:"value" yaml:"value"`
}

// Map tracks provenance for multiple resources.
type Map map[string][]Provenance // key is "resourceType:resourceID:fieldPath"

// Tracker records provenance during unification.
type Tracker interface {
	// Track records provenance for a field
	Track(resourceType types.ResourceType, resourceID string, field string, history Provenance)

	// FindByField retrieves provenance for a specific field
	FindByField(resourceType types.ResourceType, resourceID string, field string) []Provenance

	// FindByResource retrieves all provenance for a resource
	FindByResource(resourceType types.ResourceType, resourceID string) map[string][]Provenance

	// Merge appends every entry of m
	Merge(m Map)

	// Map returns the complete provenance map
	Map() Map

	// Clear removes all provenance data
	Clear()
}

// tracker is the default implementation.
type tracker struct {
	mu         sync.RWMutex
	provenance Map
	enabled    bool
	limit      int
}

// NewTracker creates a new provenance tracker.
func NewTracker(enabled bool) Tracker {
	return NewTrackerWithLimit(enabled, 0)
}

// NewTrackerWithLimit creates a tracker that keeps at most limit entries per
// field, dropping the oldest. A limit of zero keeps everything.
func NewTrackerWithLimit(enabled bool, limit int) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
		limit:      limit,
	}
}

// Track records provenance for a field.
func (p *tracker) Track(resourceType types.ResourceType, resourceID string, field string, history Provenance) {
	if !p.enabled {
		return
	}

	// Set timestamp if not provided
	if history.Timestamp.IsZero() {
		history.Timestamp = time.Now()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.appendLocked(MakeKey(resourceType, resourceID, field), history)
}

// FindByField retrieves provenance for a specific field.
func (p *tracker) FindByField(resourceType types.ResourceType, resourceID string, field string) []Provenance {
	if !p.enabled {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Provenance(nil), p.provenance[MakeKey(resourceType, resourceID, field)]...)
}

// FindByResource retrieves all provenance for a resource.
func (p *tracker) FindByResource(resourceType types.ResourceType, resourceID string) map[string][]Provenance {
	if !p.enabled {
		return nil
	}

	result := make(map[string][]Provenance)
	prefix := fmt.Sprintf("%s:%s:", string(resourceType), resourceID)

	p.mu.RLock()
	defer p.mu.RUnlock()
	for key, info := range p.provenance {
		if field, found := strings.CutPrefix(key, prefix); found {
			result[field] = append([]Provenance(nil), info...)
		}
	}

	return result
}

// Merge appends every entry of m to the tracker.
func (p *tracker) Merge(m Map) {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for key, infos := range m {
		for _, info := range infos {
			p.appendLocked(key, info)
		}
	}
}

// Map returns the complete provenance map.
func (p *tracker) Map() Map {
	if !p.enabled {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	// Return a copy to prevent external modification
	result := make(Map, len(p.provenance))
	for k, v := range p.provenance {
		result[k] = append([]Provenance{}, v...)
	}
	return result
}

// Clear removes all provenance data.
func (p *tracker) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.provenance = make(Map)
}

func (p *tracker) appendLocked(key string, history Provenance) {
	entries := append(p.provenance[key], history)
	if p.limit > 0 && len(entries) > p.limit {
		entries = append([]Provenance(nil), entries[len(entries)-p.limit:]...)
	}
	p.provenance[key] = entries
}

// MakeKey creates the unique key used for provenance tracking.
func MakeKey(resourceType types.ResourceType, resourceID string, field string) string {
	return fmt.Sprintf("%s:%s:%s", resourceType, resourceID, field)
}

// SplitKey is the inverse of MakeKey. Resource ids may not contain ':'.
func SplitKey(key string) (resourceType types.ResourceType, resourceID, field string, ok bool) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return types.ResourceType(parts[0]), parts[1], parts[2], true
}
