package dispatch

import (
	"sync"

	"github.com/openmesh-labs/agora/internal/agent"
	"github.com/openmesh-labs/agora/internal/event"
	"github.com/openmesh-labs/agora/internal/task"
)

// RoundRobin rotates assignments over the current qualifying agent list.
// The rotation index is independent per distributor instance and advances
// modulo the list length on every successful call, so N calls against M
// stable agents produce a repeating cycle of length M.
type RoundRobin struct {
	mu   sync.Mutex
	next int
	bus  *event.Bus
}

// RoundRobinOption configures a RoundRobin distributor.
type RoundRobinOption func(*RoundRobin)

// WithRoundRobinBus attaches an event bus for TaskDistributed events.
func WithRoundRobinBus(bus *event.Bus) RoundRobinOption {
	return func(d *RoundRobin) { d.bus = bus }
}

// NewRoundRobin creates a RoundRobin distributor.
func NewRoundRobin(opts ...RoundRobinOption) *RoundRobin {
	d := &RoundRobin{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns "round_robin".
func (d *RoundRobin) Name() string { return "round_robin" }

// Distribute assigns the task to the next agent in rotation.
func (d *RoundRobin) Distribute(t *task.Task, reg *agent.Registry) (string, bool) {
	pool := candidates(t, reg)
	if len(pool) == 0 {
		return "", false
	}

	d.mu.Lock()
	chosen := pool[d.next%len(pool)]
	d.next = (d.next + 1) % len(pool)
	d.mu.Unlock()

	return assign(t, chosen, d.Name(), d.bus)
}
