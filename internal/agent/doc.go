// Package agent defines the engine's view of an agent: an opaque task
// executor referenced by ID, described by a set of capability tags, and
// tracked by a Registry.
//
// The engine never cares how an agent produces its responses; an LLM call, a
// script, or a human all sit behind the [Agent] interface. Everything the
// coordination layer needs at runtime lives on the registry-owned [Handle]:
// the activity flag distributors and broadcast channels filter on, and the
// load value load-balanced distribution adapts to.
//
// # Main Types
//
//   - [Agent]: The capability interface external executors implement
//   - [Capability]: Tag from a fixed enumeration (REASONING, PLANNING, ...)
//   - [Handle]: Registry-owned record of an agent's ID, capabilities, activity, and load
//   - [Registry]: Thread-safe agent directory with active-set queries
//
// # Thread Safety
//
// Registry and Handle are safe for concurrent use. Load bookkeeping is a
// best-effort heuristic: concurrent distributors may interleave updates, and
// an assignment remains valid even if the observed load is slightly stale.
package agent
