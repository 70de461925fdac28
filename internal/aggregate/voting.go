package aggregate

import (
	"fmt"

	"github.com/openmesh-labs/agora/internal/task"
)

// Voting methods.
const (
	// MethodMajority requires an output backed by more than half of the
	// successful results. When no output reaches that bar, the call falls
	// back to plurality without changing the configured method.
	MethodMajority = "majority"

	// MethodPlurality picks the output with the most votes, ties broken by
	// first appearance in the input order.
	MethodPlurality = "plurality"
)

// Voting groups successful results by the canonical string form of their
// output and elects one group.
type Voting struct {
	method string
}

// NewVoting creates a Voting aggregator. An empty method defaults to
// majority.
func NewVoting(method string) *Voting {
	if method == "" {
		method = MethodMajority
	}
	return &Voting{method: method}
}

// Name returns "voting".
func (a *Voting) Name() string { return "voting" }

// Method returns the configured voting method.
func (a *Voting) Method() string { return a.method }

// Aggregate elects one output among the successful results.
func (a *Voting) Aggregate(results []*task.Result) *task.Result {
	if r, done := shortCircuit(results); done {
		return r
	}

	ok := successful(results)
	if len(ok) == 0 {
		return task.FailedResult(taskIDOf(results), task.AggregatedAgentID,
			"No successful results to vote on")
	}

	// Group by canonical output form, remembering first-appearance order
	// for deterministic tie-breaks.
	groups := make(map[string][]*task.Result)
	var order []string
	for _, r := range ok {
		key := fmt.Sprintf("%v", r.Output)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	total := len(ok)
	fellBack := false

	winner := ""
	if a.method == MethodMajority {
		for _, key := range order {
			if len(groups[key])*2 > total {
				winner = key
				break
			}
		}
		if winner == "" {
			fellBack = true
		}
	}
	if winner == "" {
		for _, key := range order {
			if winner == "" || len(groups[key]) > len(groups[winner]) {
				winner = key
			}
		}
	}

	elected := groups[winner]
	out := task.NewResult(taskIDOf(results), task.AggregatedAgentID, elected[0].Output)
	out.Metadata["vote_count"] = len(elected)
	out.Metadata["total_votes"] = total
	out.Metadata["method"] = a.method
	out.Metadata["sources"] = sources(elected)
	if fellBack {
		out.Metadata["fallback"] = MethodPlurality
	}
	return out
}
