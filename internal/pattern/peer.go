package pattern

import (
	"time"

	"github.com/openmesh-labs/agora/internal/comms"
	"github.com/openmesh-labs/agora/internal/event"
	"github.com/openmesh-labs/agora/internal/logging"
	"github.com/openmesh-labs/agora/internal/task"
)

// DefaultMaxRounds bounds a peer-to-peer negotiation.
const DefaultMaxRounds = 3

// PeerToPeer coordinates agents as equals. Every peer receives the task and
// the full peer list, then the pattern runs bounded rounds: collect one
// response per unfinished peer, fold it into a shared state table, and
// re-broadcast the table until every peer is done or the round budget runs
// out.
type PeerToPeer struct {
	shared
	maxRounds int
	timeout   time.Duration
}

// PeerOption configures a PeerToPeer pattern.
type PeerOption func(*PeerToPeer)

// WithPeerMaxRounds overrides the round budget.
func WithPeerMaxRounds(n int) PeerOption {
	return func(p *PeerToPeer) { p.maxRounds = n }
}

// WithPeerTimeout overrides the per-response wait.
func WithPeerTimeout(d time.Duration) PeerOption {
	return func(p *PeerToPeer) { p.timeout = d }
}

// WithPeerBus attaches an event bus.
func WithPeerBus(bus *event.Bus) PeerOption {
	return func(p *PeerToPeer) { p.bus = bus }
}

// WithPeerLogger attaches a structured logger.
func WithPeerLogger(logger *logging.Logger) PeerOption {
	return func(p *PeerToPeer) { p.setLogger(p.Name(), logger) }
}

// NewPeerToPeer creates a PeerToPeer pattern.
func NewPeerToPeer(opts ...PeerOption) *PeerToPeer {
	p := &PeerToPeer{
		shared:    newShared("peer_to_peer"),
		maxRounds: DefaultMaxRounds,
		timeout:   DefaultResponseTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns "peer_to_peer".
func (p *PeerToPeer) Name() string { return "peer_to_peer" }

// Coordinate runs the negotiation rounds.
func (p *PeerToPeer) Coordinate(t *task.Task, agents []string, ch comms.Channel) *task.Result {
	if len(agents) == 0 {
		return noAgents(t)
	}
	p.started(p.Name(), t, agents)
	if len(agents) == 1 {
		return p.finished(p.Name(), single(t, agents[0], ch, p.timeout))
	}

	state := make(map[string]PeerStatus, len(agents))
	for _, id := range agents {
		state[id] = PeerStatus{Status: PeerWorking}
		ch.Send(request(id, PeerPayload{Task: t, Peers: agents, Round: 0}))
	}

	var firstCompleted, firstAny *task.Result

	for round := 0; round < p.maxRounds; round++ {
		pending := unfinished(agents, state)
		if len(pending) == 0 {
			break
		}

		// One response per unfinished peer, drops tolerated.
		for range pending {
			msg, ok := ch.Receive(CoordinatorID, p.timeout)
			if !ok {
				continue
			}
			status := statusFrom(msg, t)
			state[msg.From] = status

			if status.Result != nil {
				if firstAny == nil {
					firstAny = status.Result
				}
				if firstCompleted == nil && status.Result.Successful() {
					firstCompleted = status.Result
				}
			}
		}

		pending = unfinished(agents, state)
		p.logger.Debug("round finished", "task_id", t.ID, "round", round, "pending", len(pending))
		if len(pending) == 0 {
			break
		}
		for _, id := range pending {
			ch.Send(request(id, PeerPayload{
				Task:      t,
				Peers:     agents,
				Round:     round + 1,
				PeerState: snapshot(state),
			}))
		}
	}

	switch {
	case firstCompleted != nil:
		return p.finished(p.Name(), firstCompleted)
	case firstAny != nil:
		return p.finished(p.Name(), firstAny)
	default:
		return p.finished(p.Name(), task.FailedResult(t.ID, CoordinatorID,
			"No results from peer coordination"))
	}
}

// statusFrom interprets a peer's response. Plain result responses count as
// that peer being done.
func statusFrom(msg comms.Message, t *task.Task) PeerStatus {
	switch content := msg.Content.(type) {
	case PeerStatus:
		return content
	case *task.Result:
		status := PeerDone
		if !content.Successful() {
			status = PeerFailed
		}
		return PeerStatus{Status: status, Result: content}
	default:
		return PeerStatus{
			Status: PeerDone,
			Result: task.NewResult(t.ID, msg.From, msg.Content),
		}
	}
}

// unfinished lists the agents still working, in the given order.
func unfinished(agents []string, state map[string]PeerStatus) []string {
	out := make([]string, 0, len(agents))
	for _, id := range agents {
		if s := state[id].Status; s != PeerDone && s != PeerFailed {
			out = append(out, id)
		}
	}
	return out
}

// snapshot copies the state table so peers never share the live map.
func snapshot(state map[string]PeerStatus) map[string]PeerStatus {
	out := make(map[string]PeerStatus, len(state))
	for id, s := range state {
		out[id] = s
	}
	return out
}
