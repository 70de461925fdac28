package aggregate

import (
	"fmt"
	"strings"

	"github.com/openmesh-labs/agora/internal/task"
)

// WeightedItem is one element of a weighted list combination, tracking which
// agent contributed it and at what normalized weight.
type WeightedItem struct {
	Item   any
	Weight float64
	Source string
}

// Weighted combines successful results using per-agent weights. The
// combination rule depends on the output types observed across all
// successful results:
//
//   - all numeric: weighted sum
//   - all string: each prefixed with its weight and newline-joined
//   - all list: flattened into WeightedItem records
//   - mixed: the single result with the highest normalized weight
//
// Agents missing from the weight map use the default weight. A zero total
// weight falls back to equal weighting.
type Weighted struct {
	weights       map[string]float64
	defaultWeight float64
}

// NewWeighted creates a Weighted aggregator. A nil weight map treats every
// agent at the default weight.
func NewWeighted(weights map[string]float64, defaultWeight float64) *Weighted {
	if weights == nil {
		weights = make(map[string]float64)
	}
	return &Weighted{weights: weights, defaultWeight: defaultWeight}
}

// Name returns "weighted".
func (a *Weighted) Name() string { return "weighted" }

// Aggregate combines the successful results under the configured weights.
func (a *Weighted) Aggregate(results []*task.Result) *task.Result {
	if r, done := shortCircuit(results); done {
		return r
	}

	ok := successful(results)
	if len(ok) == 0 {
		return task.FailedResult(taskIDOf(results), task.AggregatedAgentID,
			"No successful results to aggregate")
	}

	normalized := a.normalizedWeights(ok)

	var output any
	meta := map[string]any{
		"sources": sources(ok),
		"weights": normalized,
	}

	switch {
	case allNumeric(ok):
		sum := 0.0
		for _, r := range ok {
			n, _ := toFloat(r.Output)
			sum += normalized[r.AgentID] * n
		}
		output = sum
	case allString(ok):
		lines := make([]string, len(ok))
		for i, r := range ok {
			lines[i] = fmt.Sprintf("[Weight: %.2f] %s", normalized[r.AgentID], r.Output)
		}
		output = strings.Join(lines, "\n")
	case allList(ok):
		var items []WeightedItem
		for _, r := range ok {
			for _, item := range flatten(r.Output) {
				items = append(items, WeightedItem{
					Item:   item,
					Weight: normalized[r.AgentID],
					Source: r.AgentID,
				})
			}
		}
		output = items
	default:
		// Mixed output types cannot be combined; report the result of the
		// highest-weighted agent.
		best := ok[0]
		for _, r := range ok[1:] {
			if normalized[r.AgentID] > normalized[best.AgentID] {
				best = r
			}
		}
		output = best.Output
		meta["selected_agent"] = best.AgentID
	}

	out := task.NewResult(taskIDOf(results), task.AggregatedAgentID, output)
	for k, v := range meta {
		out.Metadata[k] = v
	}
	return out
}

// normalizedWeights maps each contributing agent to its share of the total
// weight. A zero total degrades to equal shares.
func (a *Weighted) normalizedWeights(results []*task.Result) map[string]float64 {
	raw := make(map[string]float64, len(results))
	total := 0.0
	for _, r := range results {
		w, present := a.weights[r.AgentID]
		if !present {
			w = a.defaultWeight
		}
		raw[r.AgentID] = w
		total += w
	}

	out := make(map[string]float64, len(raw))
	if total == 0 {
		equal := 1.0 / float64(len(results))
		for id := range raw {
			out[id] = equal
		}
		return out
	}
	for id, w := range raw {
		out[id] = w / total
	}
	return out
}

func allNumeric(results []*task.Result) bool {
	for _, r := range results {
		if _, ok := toFloat(r.Output); !ok {
			return false
		}
	}
	return true
}

func allString(results []*task.Result) bool {
	for _, r := range results {
		if _, ok := r.Output.(string); !ok {
			return false
		}
	}
	return true
}

func allList(results []*task.Result) bool {
	for _, r := range results {
		if !isList(r.Output) {
			return false
		}
	}
	return true
}

// toFloat widens any numeric output to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
