package aggregate

import (
	"reflect"

	"github.com/openmesh-labs/agora/internal/task"
)

// Simple selection strategies.
const (
	// StrategyFirstSuccess returns the first successful result, or the
	// first input when none succeeded.
	StrategyFirstSuccess = "first_success"

	// StrategyLastSuccess returns the last successful result, or the last
	// input when none succeeded.
	StrategyLastSuccess = "last_success"

	// StrategyConcatenate merges the outputs of all successful results
	// into one combined list.
	StrategyConcatenate = "concatenate"
)

// Simple selects or concatenates results without weighting them.
type Simple struct {
	strategy string
}

// NewSimple creates a Simple aggregator. An empty strategy defaults to
// first_success.
func NewSimple(strategy string) *Simple {
	if strategy == "" {
		strategy = StrategyFirstSuccess
	}
	return &Simple{strategy: strategy}
}

// Name returns "simple".
func (a *Simple) Name() string { return "simple" }

// Strategy returns the configured selection strategy.
func (a *Simple) Strategy() string { return a.strategy }

// Aggregate applies the configured strategy.
func (a *Simple) Aggregate(results []*task.Result) *task.Result {
	if r, done := shortCircuit(results); done {
		return r
	}

	switch a.strategy {
	case StrategyLastSuccess:
		for i := len(results) - 1; i >= 0; i-- {
			if results[i].Successful() {
				return results[i]
			}
		}
		return results[len(results)-1]
	case StrategyConcatenate:
		return a.concatenate(results)
	default:
		for _, r := range results {
			if r.Successful() {
				return r
			}
		}
		return results[0]
	}
}

// concatenate merges successful outputs into one list. List outputs are
// flattened; strings and scalars are appended as single elements.
func (a *Simple) concatenate(results []*task.Result) *task.Result {
	ok := successful(results)

	combined := make([]any, 0, len(ok))
	for _, r := range ok {
		combined = append(combined, flatten(r.Output)...)
	}

	out := task.NewResult(taskIDOf(results), task.AggregatedAgentID, combined)
	out.Metadata["strategy"] = StrategyConcatenate
	out.Metadata["sources"] = sources(ok)
	return out
}

// isList reports whether an output value is a slice or array.
func isList(output any) bool {
	if output == nil {
		return false
	}
	k := reflect.ValueOf(output).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// flatten expands slice outputs into their elements; anything else becomes a
// single element.
func flatten(output any) []any {
	if !isList(output) {
		return []any{output}
	}
	v := reflect.ValueOf(output)
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = v.Index(i).Interface()
	}
	return out
}
