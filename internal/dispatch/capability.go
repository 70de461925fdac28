package dispatch

import (
	"github.com/openmesh-labs/agora/internal/agent"
	"github.com/openmesh-labs/agora/internal/event"
	"github.com/openmesh-labs/agora/internal/task"
)

// CapabilityBased scores qualifying agents by how well they match the
// task's requirements, discounted by current load:
//
//	score = matched capabilities × (1 − load)
//
// The first maximum in the registry's ID-sorted order wins, which makes
// the tie-break deterministic (all scores tie at zero when every
// candidate is fully loaded).
type CapabilityBased struct {
	bus *event.Bus
}

// CapabilityBasedOption configures a CapabilityBased distributor.
type CapabilityBasedOption func(*CapabilityBased)

// WithCapabilityBus attaches an event bus for TaskDistributed events.
func WithCapabilityBus(bus *event.Bus) CapabilityBasedOption {
	return func(d *CapabilityBased) { d.bus = bus }
}

// NewCapabilityBased creates a CapabilityBased distributor.
func NewCapabilityBased(opts ...CapabilityBasedOption) *CapabilityBased {
	d := &CapabilityBased{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns "capability_based".
func (d *CapabilityBased) Name() string { return "capability_based" }

// Distribute assigns the task to the best-scoring qualifying agent. With no
// required capabilities the first active agent wins.
func (d *CapabilityBased) Distribute(t *task.Task, reg *agent.Registry) (string, bool) {
	pool := candidates(t, reg)
	if len(pool) == 0 {
		return "", false
	}

	if len(t.Required) == 0 {
		return assign(t, pool[0], d.Name(), d.bus)
	}

	best := pool[0]
	bestScore := score(best, t)
	for _, h := range pool[1:] {
		if s := score(h, t); s > bestScore {
			best, bestScore = h, s
		}
	}
	return assign(t, best, d.Name(), d.bus)
}

func score(h *agent.Handle, t *task.Task) float64 {
	return float64(h.MatchCount(t.Required)) * (1.0 - h.Load())
}
