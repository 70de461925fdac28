package pattern

import (
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/openmesh-labs/agora/internal/agent"
	"github.com/openmesh-labs/agora/internal/comms"
	"github.com/openmesh-labs/agora/internal/dispatch"
	"github.com/openmesh-labs/agora/internal/event"
	"github.com/openmesh-labs/agora/internal/logging"
	"github.com/openmesh-labs/agora/internal/task"
)

// Hierarchical delegates a task through a manager agent. The manager
// decomposes the task into subtasks, workers execute them in parallel, and
// the manager aggregates the collected results into the final answer.
type Hierarchical struct {
	shared
	managerID   string
	distributor dispatch.Distributor
	registry    *agent.Registry
	timeout     time.Duration
}

// HierarchicalOption configures a Hierarchical pattern.
type HierarchicalOption func(*Hierarchical)

// WithHierarchicalManager pins the manager to the given agent ID. The pin
// only applies when that agent is among the coordinated set; otherwise the
// first agent manages.
func WithHierarchicalManager(agentID string) HierarchicalOption {
	return func(p *Hierarchical) { p.managerID = agentID }
}

// WithHierarchicalDistribution routes subtasks through a distributor over
// the given registry instead of rotating over the workers.
func WithHierarchicalDistribution(d dispatch.Distributor, reg *agent.Registry) HierarchicalOption {
	return func(p *Hierarchical) {
		p.distributor = d
		p.registry = reg
	}
}

// WithHierarchicalTimeout overrides the per-response wait.
func WithHierarchicalTimeout(d time.Duration) HierarchicalOption {
	return func(p *Hierarchical) { p.timeout = d }
}

// WithHierarchicalBus attaches an event bus.
func WithHierarchicalBus(bus *event.Bus) HierarchicalOption {
	return func(p *Hierarchical) { p.bus = bus }
}

// WithHierarchicalLogger attaches a structured logger.
func WithHierarchicalLogger(logger *logging.Logger) HierarchicalOption {
	return func(p *Hierarchical) { p.setLogger(p.Name(), logger) }
}

// NewHierarchical creates a Hierarchical pattern.
func NewHierarchical(opts ...HierarchicalOption) *Hierarchical {
	p := &Hierarchical{
		shared:  newShared("hierarchical"),
		timeout: DefaultResponseTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns "hierarchical".
func (p *Hierarchical) Name() string { return "hierarchical" }

// Coordinate runs the delegation protocol.
func (p *Hierarchical) Coordinate(t *task.Task, agents []string, ch comms.Channel) *task.Result {
	if len(agents) == 0 {
		return noAgents(t)
	}
	p.started(p.Name(), t, agents)
	if len(agents) == 1 {
		return p.finished(p.Name(), single(t, agents[0], ch, p.timeout))
	}

	manager, workers := p.split(agents)
	p.logger.Debug("manager selected", "task_id", t.ID, "manager", manager, "workers", len(workers))

	subtasks, ok := p.delegate(t, manager, workers, ch)
	if !ok {
		return p.finished(p.Name(), task.FailedResult(t.ID, manager,
			"No decomposition from manager "+manager))
	}
	if len(subtasks) == 0 {
		return p.finished(p.Name(), task.FailedResult(t.ID, manager,
			"Manager "+manager+" returned no subtasks"))
	}

	results := p.fanOut(t, subtasks, workers, ch)
	return p.finished(p.Name(), p.collect(t, manager, results, ch))
}

// split picks the manager and the worker set. The configured manager wins
// when present; otherwise the first agent manages.
func (p *Hierarchical) split(agents []string) (string, []string) {
	manager := agents[0]
	if p.managerID != "" {
		for _, id := range agents {
			if id == p.managerID {
				manager = id
				break
			}
		}
	}

	workers := make([]string, 0, len(agents)-1)
	for _, id := range agents {
		if id != manager {
			workers = append(workers, id)
		}
	}
	return manager, workers
}

// delegate asks the manager to decompose the task and returns the subtasks.
func (p *Hierarchical) delegate(t *task.Task, manager string, workers []string, ch comms.Channel) ([]*task.Task, bool) {
	ch.Send(request(manager, DelegationPayload{Task: t, Workers: workers}))

	msg, ok := ch.Receive(CoordinatorID, p.timeout)
	if !ok {
		return nil, false
	}
	payload, ok := msg.Content.(SubtaskListPayload)
	if !ok {
		return nil, false
	}
	return payload.Subtasks, true
}

// fanOut assigns each subtask to a worker, sends the work out, and collects
// the responses in parallel. Missing responses are omitted.
func (p *Hierarchical) fanOut(t *task.Task, subtasks []*task.Task, workers []string, ch comms.Channel) []*task.Result {
	for i, sub := range subtasks {
		worker := p.pickWorker(sub, workers, i)
		sub.Assign(worker)
		t.AddSubtask(sub.ID)
		ch.Send(request(worker, TaskPayload{Task: sub}))
	}

	collector := pool.NewWithResults[*task.Result]()
	for range subtasks {
		collector.Go(func() *task.Result {
			msg, ok := ch.Receive(CoordinatorID, p.timeout)
			if !ok {
				return nil
			}
			return resultFrom(msg, t)
		})
	}

	results := make([]*task.Result, 0, len(subtasks))
	for _, r := range collector.Wait() {
		if r != nil {
			results = append(results, r)
		}
	}
	p.logger.Debug("subtask responses collected",
		"task_id", t.ID, "sent", len(subtasks), "received", len(results))
	return results
}

// pickWorker chooses the worker for one subtask: the configured distributor
// when present, otherwise rotation over the worker list.
func (p *Hierarchical) pickWorker(sub *task.Task, workers []string, i int) string {
	if p.distributor != nil && p.registry != nil {
		if id, ok := p.distributor.Distribute(sub, p.registry); ok {
			return id
		}
	}
	return workers[i%len(workers)]
}

// collect hands the worker results back to the manager and returns the
// manager's final aggregation.
func (p *Hierarchical) collect(t *task.Task, manager string, results []*task.Result, ch comms.Channel) *task.Result {
	ch.Send(request(manager, CollectionPayload{Task: t, Results: results}))

	msg, ok := ch.Receive(CoordinatorID, p.timeout)
	if !ok {
		return task.FailedResult(t.ID, manager, "No aggregation from manager "+manager)
	}
	return resultFrom(msg, t)
}
