// Package pattern implements multi-round coordination protocols. Each
// pattern drives several agents over a message channel to produce one final
// result for a task: hierarchical delegation through a manager, peer-to-peer
// negotiation rounds, or a market-based bidding auction.
//
// Patterns exchange the typed payloads defined in payloads.go and receive
// agent responses on the channel under the CoordinatorID address. Missing
// responses degrade to partial results where the protocol allows it; only a
// total absence of usable responses fails the coordination.
package pattern

import (
	"time"

	"github.com/openmesh-labs/agora/internal/comms"
	"github.com/openmesh-labs/agora/internal/event"
	"github.com/openmesh-labs/agora/internal/logging"
	"github.com/openmesh-labs/agora/internal/task"
)

// CoordinatorID is the channel address patterns send from and receive
// responses on. Agents answer a pattern by sending a RESPONSE message to
// this ID.
const CoordinatorID = "coordinator"

// DefaultResponseTimeout bounds each wait for a single agent response.
const DefaultResponseTimeout = 10 * time.Second

// Pattern coordinates a set of agents on one task over a channel.
type Pattern interface {
	// Name returns the pattern's identifier.
	Name() string

	// Coordinate runs the protocol to completion. It never returns nil;
	// failure modes are expressed as a FAILED result.
	Coordinate(t *task.Task, agents []string, ch comms.Channel) *task.Result
}

// shared holds the observability hooks common to all patterns.
type shared struct {
	bus    *event.Bus
	logger *logging.Logger
}

func newShared(name string) shared {
	return shared{logger: logging.NopLogger().WithPattern(name)}
}

func (s *shared) setLogger(name string, logger *logging.Logger) {
	if logger == nil {
		return
	}
	s.logger = logger.WithPattern(name)
}

// started records the beginning of a coordination run.
func (s *shared) started(name string, t *task.Task, agents []string) {
	s.logger.Info("coordination started", "task_id", t.ID, "agents", len(agents))
	if s.bus != nil {
		s.bus.Publish(event.NewCoordinationStartedEvent(t.ID, name, agents))
	}
}

// finished records the outcome of a coordination run and returns the result
// for convenience.
func (s *shared) finished(name string, r *task.Result) *task.Result {
	s.logger.Info("coordination finished",
		"task_id", r.TaskID, "success", r.Successful(), "error", r.Error)
	if s.bus != nil {
		s.bus.Publish(event.NewCoordinationFinishedEvent(r.TaskID, name, r.Successful(), r.Error))
	}
	return r
}

// noAgents is the shared empty-agent-list failure.
func noAgents(t *task.Task) *task.Result {
	return task.FailedResult(t.ID, CoordinatorID, "No agents available")
}

// request builds a REQUEST message from the coordinator to one agent.
func request(to string, content any) comms.Message {
	return comms.NewMessage(CoordinatorID, to, comms.MessageRequest, content)
}

// single runs the degenerate one-agent protocol: assign, request, await.
func single(t *task.Task, agentID string, ch comms.Channel, timeout time.Duration) *task.Result {
	t.Assign(agentID)
	ch.Send(request(agentID, TaskPayload{Task: t}))

	msg, ok := ch.Receive(CoordinatorID, timeout)
	if !ok {
		return task.FailedResult(t.ID, agentID, "No response from agent "+agentID)
	}
	return resultFrom(msg, t)
}

// resultFrom extracts a task result from a response message. Responses
// carrying anything other than a *task.Result are wrapped as a completed
// result with the raw content as output.
func resultFrom(msg comms.Message, t *task.Task) *task.Result {
	if r, ok := msg.Content.(*task.Result); ok {
		return r
	}
	return task.NewResult(t.ID, msg.From, msg.Content)
}
