package agent

import (
	"sort"
	"sync"

	"github.com/openmesh-labs/agora/internal/event"
)

// Registry is a thread-safe directory of agent handles. Lookups for missing
// IDs return (nil, false); the registry never returns an error for an
// unknown agent.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*Handle
	bus     *event.Bus
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithBus attaches an event bus to the Registry. When set, registration and
// unregistration publish AgentRegistered/AgentUnregistered events.
func WithBus(bus *event.Bus) RegistryOption {
	return func(r *Registry) {
		r.bus = bus
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		handles: make(map[string]*Handle),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register creates a Handle from the agent's Info and adds it to the
// registry, replacing any existing handle with the same ID. Returns the
// new handle.
func (r *Registry) Register(a Agent) *Handle {
	info := a.Info()
	h := NewHandle(info.ID, info.Name, info.Capabilities, a)
	r.RegisterHandle(h)
	return h
}

// RegisterHandle adds a pre-built handle to the registry, replacing any
// existing handle with the same ID.
func (r *Registry) RegisterHandle(h *Handle) {
	r.mu.Lock()
	r.handles[h.ID()] = h
	r.mu.Unlock()

	if r.bus != nil {
		caps := h.Capabilities()
		tags := make([]string, len(caps))
		for i, c := range caps {
			tags[i] = c.String()
		}
		r.bus.Publish(event.NewAgentRegisteredEvent(h.ID(), h.Name(), tags))
	}
}

// Unregister removes the agent with the given ID. Returns true if the agent
// was present.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	_, ok := r.handles[id]
	if ok {
		delete(r.handles, id)
	}
	r.mu.Unlock()

	if ok && r.bus != nil {
		r.bus.Publish(event.NewAgentUnregisteredEvent(id))
	}
	return ok
}

// Get returns the handle for the given ID, or (nil, false) if absent.
func (r *Registry) Get(id string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[id]
	return h, ok
}

// Active returns the handles of all active agents, sorted by agent ID.
// The sorted order gives distributors a documented, deterministic
// iteration order for tie-breaks.
func (r *Registry) Active() []*Handle {
	r.mu.RLock()
	out := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		if h.Active() {
			out = append(out, h)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// All returns a copy of the ID-to-handle mapping.
func (r *Registry) All() map[string]*Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Handle, len(r.handles))
	for id, h := range r.handles {
		out[id] = h
	}
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
