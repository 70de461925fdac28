package coordination

import (
	"context"
	"testing"
	"time"

	"github.com/openmesh-labs/agora/internal/agent"
	"github.com/openmesh-labs/agora/internal/comms"
	"github.com/openmesh-labs/agora/internal/config"
	"github.com/openmesh-labs/agora/internal/errors"
	"github.com/openmesh-labs/agora/internal/pattern"
	"github.com/openmesh-labs/agora/internal/task"
)

func registerAgent(c *Coordinator, id string, caps ...agent.Capability) {
	c.Registry().Register(agent.NewFuncAgent(
		agent.Info{ID: id, Name: id, Capabilities: caps},
		func(_ context.Context, input any) (any, error) { return input, nil },
	))
}

func TestCoordinator_DefaultStrategies(t *testing.T) {
	c := New()

	for _, name := range []string{ChannelDirect, ChannelBroadcast, ChannelTopic} {
		if _, ok := c.stores.getChannel(name); !ok {
			t.Errorf("missing default channel %q", name)
		}
	}
	for _, name := range []string{DistributorRoundRobin, DistributorCapabilityBased, DistributorLoadBalanced} {
		if _, ok := c.stores.getDistributor(name); !ok {
			t.Errorf("missing default distributor %q", name)
		}
	}
	for _, name := range []string{AggregatorSimple, AggregatorWeighted, AggregatorVoting} {
		if _, ok := c.stores.getAggregator(name); !ok {
			t.Errorf("missing default aggregator %q", name)
		}
	}
	for _, name := range []string{PatternHierarchical, PatternPeerToPeer, PatternMarketBased} {
		if _, ok := c.stores.getPattern(name); !ok {
			t.Errorf("missing default pattern %q", name)
		}
	}
}

func TestCoordinator_CreateTaskLinksParent(t *testing.T) {
	c := New()

	parent := c.CreateTask("parent", "", nil)
	child := c.CreateTask("child", "", nil, WithParent(parent.ID))

	if child.ParentID != parent.ID {
		t.Errorf("ParentID = %q, want %q", child.ParentID, parent.ID)
	}
	if len(parent.SubtaskIDs) != 1 || parent.SubtaskIDs[0] != child.ID {
		t.Errorf("SubtaskIDs = %v, want [%s]", parent.SubtaskIDs, child.ID)
	}

	subs, err := c.Subtasks(parent.ID)
	if err != nil {
		t.Fatalf("Subtasks() error = %v", err)
	}
	if len(subs) != 1 || subs[0] != child {
		t.Errorf("Subtasks() = %v, want the child", subs)
	}
}

func TestCoordinator_GetTaskUnknown(t *testing.T) {
	c := New()
	_, err := c.GetTask("missing")
	if !errors.Is(err, errors.ErrTaskNotFound) {
		t.Errorf("GetTask() error = %v, want ErrTaskNotFound", err)
	}
}

func TestCoordinator_TaskQueries(t *testing.T) {
	c := New()
	registerAgent(c, "a1")

	t1 := c.CreateTask("one", "", nil, WithTags("urgent"))
	t2 := c.CreateTask("two", "", nil)
	t1.Assign("a1")

	if got := c.TasksByStatus(task.StatusAssigned); len(got) != 1 || got[0] != t1 {
		t.Errorf("TasksByStatus(ASSIGNED) = %v, want [t1]", got)
	}
	if got := c.TasksByAgent("a1"); len(got) != 1 || got[0] != t1 {
		t.Errorf("TasksByAgent(a1) = %v, want [t1]", got)
	}
	if got := c.TasksByTag("urgent"); len(got) != 1 || got[0] != t1 {
		t.Errorf("TasksByTag(urgent) = %v, want [t1]", got)
	}
	if got := c.TasksByStatus(task.StatusPending); len(got) != 1 || got[0] != t2 {
		t.Errorf("TasksByStatus(PENDING) = %v, want [t2]", got)
	}
}

func TestCoordinator_OverdueTasksUsesClock(t *testing.T) {
	now := time.Now()
	c := New(WithClock(func() time.Time { return now.Add(time.Hour) }))

	due := c.CreateTask("due", "", nil)
	deadline := now.Add(time.Minute)
	due.Deadline = &deadline
	c.CreateTask("open", "", nil)

	got := c.OverdueTasks()
	if len(got) != 1 || got[0] != due {
		t.Errorf("OverdueTasks() = %v, want [due]", got)
	}
}

func TestCoordinator_DistributeTask(t *testing.T) {
	c := New()
	registerAgent(c, "a1", agent.CapabilityReasoning)
	registerAgent(c, "a2", agent.CapabilityReasoning)
	registerAgent(c, "a3", agent.CapabilitySummarization)

	tk := c.CreateTask("think", "", nil, WithRequired(agent.CapabilityReasoning))

	agentID, err := c.DistributeTask(tk.ID, DistributorCapabilityBased)
	if err != nil {
		t.Fatalf("DistributeTask() error = %v", err)
	}
	if agentID != "a1" && agentID != "a2" {
		t.Errorf("DistributeTask() = %q, want a qualifying agent", agentID)
	}
	if tk.Status != task.StatusAssigned {
		t.Errorf("Status = %v, want ASSIGNED", tk.Status)
	}
}

func TestCoordinator_DistributeTaskNoCandidate(t *testing.T) {
	c := New()
	tk := c.CreateTask("t", "", nil)

	agentID, err := c.DistributeTask(tk.ID, DistributorRoundRobin)
	if err != nil {
		t.Fatalf("DistributeTask() error = %v", err)
	}
	if agentID != "" {
		t.Errorf("DistributeTask() = %q, want empty with no agents", agentID)
	}
}

func TestCoordinator_DistributeTaskUnknownNames(t *testing.T) {
	c := New()
	tk := c.CreateTask("t", "", nil)

	if _, err := c.DistributeTask("missing", DistributorRoundRobin); !errors.Is(err, errors.ErrTaskNotFound) {
		t.Errorf("error = %v, want ErrTaskNotFound", err)
	}
	if _, err := c.DistributeTask(tk.ID, "bogus"); !errors.Is(err, errors.ErrDistributorNotFound) {
		t.Errorf("error = %v, want ErrDistributorNotFound", err)
	}
}

func TestCoordinator_SendReceiveMessage(t *testing.T) {
	c := New()

	msg := comms.NewMessage("a1", "a2", comms.MessageRequest, "hello")
	sent, err := c.SendMessage(ChannelDirect, msg)
	if err != nil || !sent {
		t.Fatalf("SendMessage() = (%v, %v), want accepted", sent, err)
	}

	got, received, err := c.ReceiveMessage(ChannelDirect, "a2", time.Second)
	if err != nil || !received {
		t.Fatalf("ReceiveMessage() = (%v, %v), want a message", received, err)
	}
	if got.Content != "hello" {
		t.Errorf("Content = %v, want hello", got.Content)
	}

	if _, err := c.SendMessage("bogus", msg); !errors.Is(err, errors.ErrChannelNotFound) {
		t.Errorf("error = %v, want ErrChannelNotFound", err)
	}
}

func TestCoordinator_AggregateResults(t *testing.T) {
	c := New()

	results := []*task.Result{
		task.NewResult("t1", "a1", "X"),
		task.NewResult("t1", "a2", "X"),
		task.NewResult("t1", "a3", "Y"),
	}
	combined, err := c.AggregateResults(results, AggregatorVoting)
	if err != nil {
		t.Fatalf("AggregateResults() error = %v", err)
	}
	if combined.Output != "X" {
		t.Errorf("Output = %v, want X", combined.Output)
	}

	if _, err := c.AggregateResults(results, "bogus"); !errors.Is(err, errors.ErrAggregatorNotFound) {
		t.Errorf("error = %v, want ErrAggregatorNotFound", err)
	}
}

func TestCoordinator_CoordinateTaskPersistsOutcome(t *testing.T) {
	c := New()
	registerAgent(c, "solo")

	tk := c.CreateTask("solve", "", "problem")

	// Scripted responder for the single-agent protocol.
	go func() {
		msg, _, err := c.ReceiveMessage(ChannelDirect, "solo", 2*time.Second)
		if err != nil {
			return
		}
		payload, ok := msg.Content.(pattern.TaskPayload)
		if !ok {
			return
		}
		reply := comms.NewMessage("solo", pattern.CoordinatorID, comms.MessageResponse,
			task.NewResult(payload.Task.ID, "solo", "solved"))
		c.SendMessage(ChannelDirect, reply)
	}()

	r, err := c.CoordinateTask(tk.ID, PatternHierarchical, ChannelDirect)
	if err != nil {
		t.Fatalf("CoordinateTask() error = %v", err)
	}
	if r.Output != "solved" {
		t.Errorf("Output = %v, want solved", r.Output)
	}
	if tk.Status != task.StatusCompleted {
		t.Errorf("Status = %v, want COMPLETED", tk.Status)
	}

	stored, ok := c.ResultFor(tk.ID)
	if !ok || stored != r {
		t.Error("ResultFor() should return the persisted result")
	}
}

func TestCoordinator_CoordinateTaskFailureCompletesTask(t *testing.T) {
	c := New(WithConfig(fastEngine()))
	tk := c.CreateTask("t", "", nil)

	// No agents registered: the pattern fails, the task fails, no error.
	r, err := c.CoordinateTask(tk.ID, PatternPeerToPeer, ChannelDirect)
	if err != nil {
		t.Fatalf("CoordinateTask() error = %v", err)
	}
	if r.Successful() {
		t.Error("result should be FAILED with no agents")
	}
	if tk.Status != task.StatusFailed {
		t.Errorf("Status = %v, want FAILED", tk.Status)
	}
}

func TestCoordinator_CoordinateTaskUnknownNames(t *testing.T) {
	c := New()
	tk := c.CreateTask("t", "", nil)

	if _, err := c.CoordinateTask(tk.ID, "bogus", ChannelDirect); !errors.Is(err, errors.ErrPatternNotFound) {
		t.Errorf("error = %v, want ErrPatternNotFound", err)
	}
	if _, err := c.CoordinateTask(tk.ID, PatternHierarchical, "bogus"); !errors.Is(err, errors.ErrChannelNotFound) {
		t.Errorf("error = %v, want ErrChannelNotFound", err)
	}
}

// fastEngine shrinks the engine timeouts so failure paths resolve quickly.
func fastEngine() config.EngineConfig {
	cfg := config.Default().Engine
	cfg.ResponseTimeoutSeconds = 1
	cfg.BidTimeoutSeconds = 1
	cfg.BidPollIntervalMs = 10
	return cfg
}
