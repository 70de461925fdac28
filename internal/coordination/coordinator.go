// Package coordination wires the engine together. The Coordinator owns the
// agent registry, the name-keyed strategy maps (channels, distributors,
// aggregators, patterns), and the task and result stores, and exposes the
// engine as one facade: create tasks, distribute them, move messages, and
// run full coordination protocols.
package coordination

import (
	"time"

	"github.com/openmesh-labs/agora/internal/agent"
	"github.com/openmesh-labs/agora/internal/aggregate"
	"github.com/openmesh-labs/agora/internal/comms"
	"github.com/openmesh-labs/agora/internal/config"
	"github.com/openmesh-labs/agora/internal/dispatch"
	"github.com/openmesh-labs/agora/internal/errors"
	"github.com/openmesh-labs/agora/internal/event"
	"github.com/openmesh-labs/agora/internal/logging"
	"github.com/openmesh-labs/agora/internal/pattern"
	"github.com/openmesh-labs/agora/internal/task"
)

// Default strategy names the Coordinator pre-populates.
const (
	ChannelDirect    = "direct"
	ChannelBroadcast = "broadcast"
	ChannelTopic     = "topic"

	DistributorRoundRobin      = "round_robin"
	DistributorCapabilityBased = "capability_based"
	DistributorLoadBalanced    = "load_balanced"

	AggregatorSimple   = "simple"
	AggregatorWeighted = "weighted"
	AggregatorVoting   = "voting"

	PatternHierarchical = "hierarchical"
	PatternPeerToPeer   = "peer_to_peer"
	PatternMarketBased  = "market_based"
)

// Coordinator is the engine facade. Safe for concurrent use.
type Coordinator struct {
	registry *agent.Registry
	bus      *event.Bus
	logger   *logging.Logger
	cfg      config.EngineConfig
	clock    func() time.Time

	stores *stores
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRegistry supplies a pre-built agent registry. Without it the
// Coordinator creates its own.
func WithRegistry(reg *agent.Registry) Option {
	return func(c *Coordinator) { c.registry = reg }
}

// WithBus attaches an event bus that all owned components publish to.
func WithBus(bus *event.Bus) Option {
	return func(c *Coordinator) { c.bus = bus }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithConfig overrides the engine defaults (timeouts, rounds, aggregation
// strategies) used when constructing the stock strategies.
func WithConfig(cfg config.EngineConfig) Option {
	return func(c *Coordinator) { c.cfg = cfg }
}

// WithClock overrides the time source used for overdue checks.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// New creates a Coordinator with the stock strategies registered under the
// default names.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		bus:    event.NewBus(),
		logger: logging.NopLogger(),
		cfg:    config.Default().Engine,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = agent.NewRegistry(agent.WithBus(c.bus))
	}

	c.stores = newStores()
	c.registerDefaults()
	return c
}

// registerDefaults populates the strategy maps with the stock
// implementations, wired to the coordinator's bus, logger, and config.
func (c *Coordinator) registerDefaults() {
	chOpts := []comms.Option{comms.WithBus(c.bus), comms.WithLogger(c.logger)}
	c.RegisterChannel(ChannelDirect, comms.NewDirect(chOpts...))
	c.RegisterChannel(ChannelBroadcast, comms.NewBroadcast(c.registry, chOpts...))
	c.RegisterChannel(ChannelTopic, comms.NewTopic(chOpts...))

	c.RegisterDistributor(DistributorRoundRobin,
		dispatch.NewRoundRobin(dispatch.WithRoundRobinBus(c.bus)))
	c.RegisterDistributor(DistributorCapabilityBased,
		dispatch.NewCapabilityBased(dispatch.WithCapabilityBus(c.bus)))
	c.RegisterDistributor(DistributorLoadBalanced,
		dispatch.NewLoadBalanced(dispatch.WithLoadBalancedBus(c.bus)))

	c.RegisterAggregator(AggregatorSimple, aggregate.NewSimple(c.cfg.SimpleStrategy))
	c.RegisterAggregator(AggregatorWeighted, aggregate.NewWeighted(nil, c.cfg.DefaultWeight))
	c.RegisterAggregator(AggregatorVoting, aggregate.NewVoting(c.cfg.VotingMethod))

	c.RegisterPattern(PatternHierarchical, pattern.NewHierarchical(
		pattern.WithHierarchicalTimeout(c.cfg.ResponseTimeout()),
		pattern.WithHierarchicalBus(c.bus),
		pattern.WithHierarchicalLogger(c.logger),
	))
	c.RegisterPattern(PatternPeerToPeer, pattern.NewPeerToPeer(
		pattern.WithPeerMaxRounds(c.cfg.MaxRounds),
		pattern.WithPeerTimeout(c.cfg.ResponseTimeout()),
		pattern.WithPeerBus(c.bus),
		pattern.WithPeerLogger(c.logger),
	))
	c.RegisterPattern(PatternMarketBased, pattern.NewMarketBased(
		pattern.WithMarketBidTimeout(c.cfg.BidTimeout()),
		pattern.WithMarketPollInterval(c.cfg.BidPollInterval()),
		pattern.WithMarketResponseTimeout(c.cfg.ResponseTimeout()),
		pattern.WithMarketBus(c.bus),
		pattern.WithMarketLogger(c.logger),
	))
}

// Registry returns the coordinator's agent registry.
func (c *Coordinator) Registry() *agent.Registry { return c.registry }

// Bus returns the coordinator's event bus.
func (c *Coordinator) Bus() *event.Bus { return c.bus }

// TaskOption configures task creation.
type TaskOption func(*task.Task)

// WithParent links the new task under an existing parent task.
func WithParent(parentID string) TaskOption {
	return func(t *task.Task) { t.ParentID = parentID }
}

// WithRequired sets the capabilities an agent must have for the task.
func WithRequired(caps ...agent.Capability) TaskOption {
	return func(t *task.Task) { t.Required = caps }
}

// WithPriority sets the task's message priority.
func WithPriority(p comms.Priority) TaskOption {
	return func(t *task.Task) { t.Priority = p }
}

// WithDeadline sets the task's deadline.
func WithDeadline(deadline time.Time) TaskOption {
	return func(t *task.Task) { t.Deadline = &deadline }
}

// WithTags labels the task for later lookup.
func WithTags(tags ...string) TaskOption {
	return func(t *task.Task) {
		for _, tag := range tags {
			t.AddTag(tag)
		}
	}
}

// CreateTask builds a task, stores it, and links it to its parent when one
// is set.
func (c *Coordinator) CreateTask(name, description string, input any, opts ...TaskOption) *task.Task {
	t := task.New(name, description, input)
	for _, opt := range opts {
		opt(t)
	}

	c.stores.putTask(t)
	if t.ParentID != "" {
		if parent, ok := c.stores.getTask(t.ParentID); ok {
			parent.AddSubtask(t.ID)
		}
	}

	c.logger.Debug("task created", "task_id", t.ID, "name", name, "parent", t.ParentID)
	c.bus.Publish(event.NewTaskCreatedEvent(t.ID, t.Name, t.ParentID))
	return t
}

// GetTask resolves a task by ID.
func (c *Coordinator) GetTask(id string) (*task.Task, error) {
	t, ok := c.stores.getTask(id)
	if !ok {
		return nil, errors.NewNotFoundError("task", id)
	}
	return t, nil
}

// TasksByStatus lists stored tasks in the given state.
func (c *Coordinator) TasksByStatus(s task.Status) []*task.Task {
	return c.stores.tasksWhere(func(t *task.Task) bool { return t.Status == s })
}

// TasksByAgent lists stored tasks assigned to the given agent.
func (c *Coordinator) TasksByAgent(agentID string) []*task.Task {
	return c.stores.tasksWhere(func(t *task.Task) bool { return t.AssignedTo == agentID })
}

// TasksByTag lists stored tasks carrying the given tag.
func (c *Coordinator) TasksByTag(tag string) []*task.Task {
	return c.stores.tasksWhere(func(t *task.Task) bool { return t.HasTag(tag) })
}

// OverdueTasks lists stored tasks whose deadline has passed.
func (c *Coordinator) OverdueTasks() []*task.Task {
	now := c.clock()
	return c.stores.tasksWhere(func(t *task.Task) bool { return t.IsOverdue(now) })
}

// Subtasks resolves a task's direct children.
func (c *Coordinator) Subtasks(id string) ([]*task.Task, error) {
	t, err := c.GetTask(id)
	if err != nil {
		return nil, err
	}

	out := make([]*task.Task, 0, len(t.SubtaskIDs))
	for _, subID := range t.SubtaskIDs {
		if sub, ok := c.stores.getTask(subID); ok {
			out = append(out, sub)
		}
	}
	return out, nil
}

// DistributeTask assigns a stored task through a named distributor. A
// qualifying agent's ID is returned; ("", nil) means no agent qualified.
func (c *Coordinator) DistributeTask(taskID, distributorName string) (string, error) {
	t, err := c.GetTask(taskID)
	if err != nil {
		return "", err
	}
	d, ok := c.stores.getDistributor(distributorName)
	if !ok {
		return "", errors.NewNotFoundError("distributor", distributorName)
	}

	agentID, assigned := d.Distribute(t, c.registry)
	if !assigned {
		c.logger.Debug("no candidate for task", "task_id", taskID, "distributor", distributorName)
		return "", nil
	}
	return agentID, nil
}

// SendMessage sends a message through a named channel. The boolean reports
// whether the channel accepted the message.
func (c *Coordinator) SendMessage(channelName string, msg comms.Message) (bool, error) {
	ch, ok := c.stores.getChannel(channelName)
	if !ok {
		return false, errors.NewNotFoundError("channel", channelName)
	}
	return ch.Send(msg), nil
}

// ReceiveMessage dequeues the next message for an agent from a named
// channel, blocking up to timeout.
func (c *Coordinator) ReceiveMessage(channelName, agentID string, timeout time.Duration) (comms.Message, bool, error) {
	ch, ok := c.stores.getChannel(channelName)
	if !ok {
		return comms.Message{}, false, errors.NewNotFoundError("channel", channelName)
	}
	msg, received := ch.Receive(agentID, timeout)
	return msg, received, nil
}

// AggregateResults combines results through a named aggregator.
func (c *Coordinator) AggregateResults(results []*task.Result, aggregatorName string) (*task.Result, error) {
	a, ok := c.stores.getAggregator(aggregatorName)
	if !ok {
		return nil, errors.NewNotFoundError("aggregator", aggregatorName)
	}

	combined := a.Aggregate(results)
	c.bus.Publish(event.NewResultsAggregatedEvent(a.Name(), len(results), combined.Successful()))
	return combined, nil
}

// CoordinateTask runs a named pattern over a named channel for a stored
// task. The agent list defaults to all active agents when empty. The
// pattern's result is persisted and the task is completed or failed
// accordingly; a FAILED result is a legitimate outcome, not an error.
func (c *Coordinator) CoordinateTask(taskID, patternName, channelName string, agentIDs ...string) (*task.Result, error) {
	t, err := c.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	p, ok := c.stores.getPattern(patternName)
	if !ok {
		return nil, errors.NewNotFoundError("pattern", patternName)
	}
	ch, ok := c.stores.getChannel(channelName)
	if !ok {
		return nil, errors.NewNotFoundError("channel", channelName)
	}

	if len(agentIDs) == 0 {
		for _, h := range c.registry.Active() {
			agentIDs = append(agentIDs, h.ID())
		}
	}

	from := t.Status
	r := p.Coordinate(t, agentIDs, ch)
	c.stores.putResult(t.ID, r)
	if r.Successful() {
		t.Complete(r)
	} else {
		t.Fail(r.Error)
	}
	c.bus.Publish(event.NewTaskStatusEvent(t.ID, from.String(), t.Status.String()))

	c.logger.Info("task coordinated",
		"task_id", t.ID, "pattern", patternName, "channel", channelName,
		"agents", len(agentIDs), "success", r.Successful())
	return r, nil
}

// ResultFor returns the stored result for a task, if any.
func (c *Coordinator) ResultFor(taskID string) (*task.Result, bool) {
	return c.stores.getResult(taskID)
}

// RegisterChannel adds or replaces a channel under the given name.
func (c *Coordinator) RegisterChannel(name string, ch comms.Channel) {
	c.stores.putChannel(name, ch)
}

// RegisterDistributor adds or replaces a distributor under the given name.
func (c *Coordinator) RegisterDistributor(name string, d dispatch.Distributor) {
	c.stores.putDistributor(name, d)
}

// RegisterAggregator adds or replaces an aggregator under the given name.
func (c *Coordinator) RegisterAggregator(name string, a aggregate.Aggregator) {
	c.stores.putAggregator(name, a)
}

// RegisterPattern adds or replaces a pattern under the given name.
func (c *Coordinator) RegisterPattern(name string, p pattern.Pattern) {
	c.stores.putPattern(name, p)
}
