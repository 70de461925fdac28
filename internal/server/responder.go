package server

import (
	"context"
	"time"

	"github.com/openmesh-labs/agora/internal/agent"
	"github.com/openmesh-labs/agora/internal/comms"
	"github.com/openmesh-labs/agora/internal/coordination"
	"github.com/openmesh-labs/agora/internal/pattern"
	"github.com/openmesh-labs/agora/internal/task"
)

// responderPoll is how often responder loops check for shutdown.
const responderPoll = 200 * time.Millisecond

// RunResponder services coordination requests for one registered agent on
// the direct channel until stop closes. It answers each protocol payload
// the way a scripted participant would: execute task requests, bid in
// auctions with the given bid, and report done in peer rounds. Declarative
// agents registered over the API and demo agents both run on this loop.
func RunResponder(c *coordination.Coordinator, a agent.Agent, bid float64, stop <-chan struct{}) {
	id := a.Info().ID
	for {
		select {
		case <-stop:
			return
		default:
		}

		msg, ok, err := c.ReceiveMessage(coordination.ChannelDirect, id, responderPoll)
		if err != nil || !ok {
			continue
		}
		if reply, respond := answer(c, a, msg, bid); respond {
			replyMsg := comms.NewMessage(id, pattern.CoordinatorID, comms.MessageResponse, reply)
			replyMsg.ReplyTo = msg.ID
			c.SendMessage(coordination.ChannelDirect, replyMsg)
		}
	}
}

// answer produces the reply content for one protocol message.
func answer(c *coordination.Coordinator, a agent.Agent, msg comms.Message, bid float64) (any, bool) {
	id := a.Info().ID
	switch payload := msg.Content.(type) {
	case pattern.TaskPayload:
		return execute(a, payload.Task), true
	case pattern.AwardPayload:
		return execute(a, payload.Task), true
	case pattern.BidRequestPayload:
		return pattern.BidPayload{Bid: bid}, true
	case pattern.PeerPayload:
		return pattern.PeerStatus{
			Status: pattern.PeerDone,
			Result: execute(a, payload.Task),
		}, true
	case pattern.DelegationPayload:
		// Declarative responders do not decompose; hand the whole task back
		// as a single subtask for the workers.
		sub := task.New(payload.Task.Name, payload.Task.Description, payload.Task.Input)
		sub.ParentID = payload.Task.ID
		return pattern.SubtaskListPayload{Subtasks: []*task.Task{sub}}, true
	case pattern.CollectionPayload:
		combined, err := c.AggregateResults(payload.Results, coordination.AggregatorSimple)
		if err != nil {
			return task.FailedResult(payload.Task.ID, id, err.Error()), true
		}
		combined.TaskID = payload.Task.ID
		return combined, true
	case pattern.RejectPayload:
		return nil, false
	default:
		return nil, false
	}
}

// execute runs the agent's process function over a task's input.
func execute(a agent.Agent, t *task.Task) *task.Result {
	id := a.Info().ID
	out, err := a.Process(context.Background(), t.Input)
	if err != nil {
		return task.FailedResult(t.ID, id, err.Error())
	}
	return task.NewResult(t.ID, id, out)
}
