// Package comms provides in-process, priority-ordered message transport
// between agent IDs.
//
// Each recipient has an independent inbox: a priority queue ordered by
// message priority descending (URGENT first), with insertion order as the
// tie-break for equal priorities. That ordering holds under concurrent
// senders. No ordering guarantee is made across different recipients'
// inboxes.
//
// Three channel variants share the [Channel] contract:
//
//   - [Direct]: point-to-point only; rejects messages without a recipient
//   - [Broadcast]: fans broadcasts out to every active registered agent
//     except the sender; delivers targeted messages point-to-point
//   - [Topic]: subscription-based fan-out keyed by topic name
//
// Expired messages are never delivered. Send refuses them outright, and a
// message that expires while queued is discarded at receive time, with the
// read transparently retried against the remaining timeout.
//
// # Blocking Semantics
//
// Receive is the engine's only blocking operation. A positive timeout
// bounds the wait; a zero or negative timeout blocks indefinitely. There is
// no separate cancellation token; coordination code relies on bounded
// per-receive timeouts instead.
package comms
