package propverify

import (
	"sync"

	"github.com/agentstation/propverify/pkg/property"
)

// Hook function types for verification events
type (
	// PropertyUnifiedHook is called after a property was unified and stored
	PropertyUnifiedHook func(p *property.Property)

	// VerifyFailedHook is called when verification of a property failed
	VerifyFailedHook func(propertyID string, err error)
)

// hooks manages event callbacks for verification results
type hooks struct {
	mu             sync.RWMutex
	onUnified      []PropertyUnifiedHook
	onVerifyFailed []VerifyFailedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnPropertyUnified registers a callback for stored properties
func (h *hooks) OnPropertyUnified(fn PropertyUnifiedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUnified = append(h.onUnified, fn)
}

// OnVerifyFailed registers a callback for failed verifications
func (h *hooks) OnVerifyFailed(fn VerifyFailedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onVerifyFailed = append(h.onVerifyFailed, fn)
}

func (h *hooks) triggerUnified(p *property.Property) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onUnified {
		hook(p.Clone())
	}
}

func (h *hooks) triggerFailed(propertyID string, err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onVerifyFailed {
		hook(propertyID, err)
	}
}
