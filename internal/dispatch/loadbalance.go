package dispatch

import (
	"github.com/openmesh-labs/agora/internal/agent"
	"github.com/openmesh-labs/agora/internal/event"
	"github.com/openmesh-labs/agora/internal/task"
)

// LoadBalanced assigns the task to the qualifying agent with the lowest
// load. Ties go to the first minimum in the registry's ID-sorted order.
type LoadBalanced struct {
	bus *event.Bus
}

// LoadBalancedOption configures a LoadBalanced distributor.
type LoadBalancedOption func(*LoadBalanced)

// WithLoadBalancedBus attaches an event bus for TaskDistributed events.
func WithLoadBalancedBus(bus *event.Bus) LoadBalancedOption {
	return func(d *LoadBalanced) { d.bus = bus }
}

// NewLoadBalanced creates a LoadBalanced distributor.
func NewLoadBalanced(opts ...LoadBalancedOption) *LoadBalanced {
	d := &LoadBalanced{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns "load_balanced".
func (d *LoadBalanced) Name() string { return "load_balanced" }

// Distribute assigns the task to the least-loaded qualifying agent.
func (d *LoadBalanced) Distribute(t *task.Task, reg *agent.Registry) (string, bool) {
	pool := candidates(t, reg)
	if len(pool) == 0 {
		return "", false
	}

	best := pool[0]
	for _, h := range pool[1:] {
		if h.Load() < best.Load() {
			best = h
		}
	}
	return assign(t, best, d.Name(), d.bus)
}
