// Package dispatch assigns tasks to agents. Each distributor is a named
// strategy: round-robin rotation, capability-and-load scoring, or pure
// load balancing.
//
// All strategies share a pre-filter: if the task declares required
// capabilities, only active agents whose capability set covers the
// requirement qualify; with no qualifying agent the distributor declines
// the task rather than erroring. On success every strategy assigns the
// task and adds 0.1 load to the chosen agent (capped at 1.0), which is the
// feedback loop load-based distribution adapts through.
package dispatch

import (
	"github.com/openmesh-labs/agora/internal/agent"
	"github.com/openmesh-labs/agora/internal/event"
	"github.com/openmesh-labs/agora/internal/task"
)

// assignLoadIncrement is added to an agent's load on every assignment.
const assignLoadIncrement = 0.1

// Distributor assigns a task to one agent out of a registry.
type Distributor interface {
	// Name returns the strategy's identifier.
	Name() string

	// Distribute selects an agent for the task. On success it assigns the
	// task to the agent, bumps the agent's load, and returns (agentID,
	// true). Returns ("", false) when no active agent qualifies.
	Distribute(t *task.Task, reg *agent.Registry) (string, bool)
}

// candidates returns the active agents qualified for the task, in the
// registry's ID-sorted order. With no required capabilities every active
// agent qualifies.
func candidates(t *task.Task, reg *agent.Registry) []*agent.Handle {
	active := reg.Active()
	if len(t.Required) == 0 {
		return active
	}

	qualified := make([]*agent.Handle, 0, len(active))
	for _, h := range active {
		if h.HasAllCapabilities(t.Required) {
			qualified = append(qualified, h)
		}
	}
	return qualified
}

// assign finalizes a selection: task assignment, load bump, and optional
// event publication.
func assign(t *task.Task, h *agent.Handle, name string, bus *event.Bus) (string, bool) {
	t.Assign(h.ID())
	h.AddLoad(assignLoadIncrement)
	if bus != nil {
		bus.Publish(event.NewTaskDistributedEvent(t.ID, h.ID(), name))
	}
	return h.ID(), true
}
