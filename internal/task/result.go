package task

import "time"

// Result is one agent's outcome for a task, or an aggregator's combination
// of several outcomes.
type Result struct {
	// TaskID identifies the task this result belongs to.
	TaskID string
	// AgentID identifies the producing agent. Aggregated results use the
	// sentinel "aggregated".
	AgentID string
	// Output is the arbitrary produced value.
	Output any
	// Status defaults to COMPLETED.
	Status Status
	// Timestamp is when the result was produced.
	Timestamp time.Time
	// Metadata holds arbitrary key-value annotations.
	Metadata map[string]any
	// Error is a descriptive failure message, empty on success.
	Error string
}

// AggregatedAgentID is the sentinel agent ID aggregators stamp on combined
// results.
const AggregatedAgentID = "aggregated"

// NewResult creates a COMPLETED result with the current timestamp.
func NewResult(taskID, agentID string, output any) *Result {
	return &Result{
		TaskID:    taskID,
		AgentID:   agentID,
		Output:    output,
		Status:    StatusCompleted,
		Timestamp: time.Now(),
		Metadata:  make(map[string]any),
	}
}

// FailedResult creates a FAILED result carrying the given error message.
func FailedResult(taskID, agentID, errMsg string) *Result {
	return &Result{
		TaskID:    taskID,
		AgentID:   agentID,
		Status:    StatusFailed,
		Timestamp: time.Now(),
		Metadata:  make(map[string]any),
		Error:     errMsg,
	}
}

// Successful returns true iff the result completed without an error.
func (r *Result) Successful() bool {
	return r.Status == StatusCompleted && r.Error == ""
}
