package pattern

import "github.com/openmesh-labs/agora/internal/task"

// Message payloads exchanged between patterns and agents. Each protocol
// step carries one of these typed structs as the message content, so agent
// implementations can switch on the concrete type instead of probing
// loosely shaped maps.

// TaskPayload asks an agent to execute a task directly.
type TaskPayload struct {
	Task *task.Task
}

// DelegationPayload asks a manager agent to decompose a task for the given
// workers.
type DelegationPayload struct {
	Task    *task.Task
	Workers []string
}

// SubtaskListPayload is a manager's decomposition response.
type SubtaskListPayload struct {
	Subtasks []*task.Task
}

// CollectionPayload hands collected worker results back to a manager for
// final aggregation.
type CollectionPayload struct {
	Task    *task.Task
	Results []*task.Result
}

// PeerStatus is one peer's progress entry in a peer-to-peer round. Status is
// one of the Peer* constants.
type PeerStatus struct {
	Status string
	Result *task.Result
}

// Peer status values.
const (
	PeerWorking = "working"
	PeerDone    = "done"
	PeerFailed  = "failed"
)

// PeerPayload is the per-round state shared with every unfinished peer.
type PeerPayload struct {
	Task      *task.Task
	Peers     []string
	Round     int
	PeerState map[string]PeerStatus
}

// BidRequestPayload opens a market round for a task.
type BidRequestPayload struct {
	Task *task.Task
}

// BidPayload is an agent's bid. A Result may accompany the bid when the
// agent speculatively executed the task.
type BidPayload struct {
	Bid    float64
	Result *task.Result
}

// AwardPayload tells the winning bidder to execute the task.
type AwardPayload struct {
	Task *task.Task
}

// RejectPayload notifies a losing bidder.
type RejectPayload struct {
	TaskID string
}
