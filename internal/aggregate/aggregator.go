// Package aggregate combines several task results into one. Each aggregator
// is a named, stateless strategy: simple selection or concatenation, weighted
// combination, or voting.
//
// All strategies share two edge cases: an empty input produces a FAILED
// result with error "No results to aggregate", and a single input is
// returned unchanged. Aggregators hold configuration only, never per-call
// state, so repeated calls over the same inputs yield equal outputs.
package aggregate

import (
	"github.com/openmesh-labs/agora/internal/task"
)

// Aggregator combines a list of task results into a single result.
type Aggregator interface {
	// Name returns the strategy's identifier.
	Name() string

	// Aggregate combines the results. It never returns nil; failure modes
	// are expressed as a FAILED result.
	Aggregate(results []*task.Result) *task.Result
}

// shortCircuit handles the shared edge cases. It returns (result, true) when
// the input is empty or a singleton and no strategy logic should run.
func shortCircuit(results []*task.Result) (*task.Result, bool) {
	switch len(results) {
	case 0:
		return task.FailedResult("", task.AggregatedAgentID, "No results to aggregate"), true
	case 1:
		return results[0], true
	default:
		return nil, false
	}
}

// successful filters to results that completed without an error.
func successful(results []*task.Result) []*task.Result {
	out := make([]*task.Result, 0, len(results))
	for _, r := range results {
		if r.Successful() {
			out = append(out, r)
		}
	}
	return out
}

// sources lists the agent IDs that contributed the given results.
func sources(results []*task.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.AgentID
	}
	return out
}

// taskIDOf returns the task ID shared by the inputs, taken from the first.
func taskIDOf(results []*task.Result) string {
	if len(results) == 0 {
		return ""
	}
	return results[0].TaskID
}
