package agent

import "sync"

// Handle is the registry-owned record of an agent. It tracks the mutable
// coordination state (activity flag, load) alongside the immutable identity
// and capability set. All methods are safe for concurrent use.
type Handle struct {
	mu           sync.RWMutex
	id           string
	name         string
	capabilities map[Capability]struct{}
	active       bool
	load         float64
	impl         Agent
}

// NewHandle creates a Handle for the given identity and capabilities.
// Handles start active with zero load.
func NewHandle(id, name string, capabilities []Capability, impl Agent) *Handle {
	caps := make(map[Capability]struct{}, len(capabilities))
	for _, c := range capabilities {
		caps[c] = struct{}{}
	}
	return &Handle{
		id:           id,
		name:         name,
		capabilities: caps,
		active:       true,
		impl:         impl,
	}
}

// ID returns the agent's identifier.
func (h *Handle) ID() string { return h.id }

// Name returns the agent's display name.
func (h *Handle) Name() string { return h.name }

// Impl returns the underlying Agent implementation, or nil for handles
// registered without one (pure bookkeeping entries).
func (h *Handle) Impl() Agent { return h.impl }

// Capabilities returns a copy of the agent's capability set.
func (h *Handle) Capabilities() []Capability {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Capability, 0, len(h.capabilities))
	for c := range h.capabilities {
		out = append(out, c)
	}
	return out
}

// HasCapability returns true if the agent advertises the given capability.
func (h *Handle) HasCapability(c Capability) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.capabilities[c]
	return ok
}

// HasAllCapabilities returns true if the agent advertises every capability
// in the given set. An empty set is trivially satisfied.
func (h *Handle) HasAllCapabilities(cs []Capability) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range cs {
		if _, ok := h.capabilities[c]; !ok {
			return false
		}
	}
	return true
}

// MatchCount returns how many of the given capabilities the agent has.
func (h *Handle) MatchCount(cs []Capability) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, c := range cs {
		if _, ok := h.capabilities[c]; ok {
			n++
		}
	}
	return n
}

// Active returns the activity flag.
func (h *Handle) Active() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.active
}

// Activate marks the agent as available for coordination.
func (h *Handle) Activate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.active = true
}

// Deactivate marks the agent as unavailable. Inactive agents are skipped by
// distributors and broadcast fan-out.
func (h *Handle) Deactivate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.active = false
}

// Load returns the agent's current load value in [0, 1].
func (h *Handle) Load() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.load
}

// AddLoad adjusts the load by delta, clamping the result to [0, 1].
// Distributors add 0.1 per assignment; embedding code may subtract on
// completion.
func (h *Handle) AddLoad(delta float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.load += delta
	if h.load > 1.0 {
		h.load = 1.0
	}
	if h.load < 0.0 {
		h.load = 0.0
	}
}

// SetLoad overwrites the load value, clamping to [0, 1].
func (h *Handle) SetLoad(load float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.load = min(max(load, 0.0), 1.0)
}
