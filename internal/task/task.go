// Package task defines the unit of work the coordination engine moves
// between agents: the Task lifecycle state machine, the subtask tree, and
// the TaskResult produced by agents and aggregators.
//
// A Task is owned by one driving component at a time (the distributor or
// pattern coordinating it); its mutators are not internally locked. The
// coordinator guards its task store with its own mutex.
package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/openmesh-labs/agora/internal/agent"
	"github.com/openmesh-labs/agora/internal/comms"
)

// Status represents the current state of a task.
type Status string

const (
	// StatusPending indicates the task has been created but not assigned.
	StatusPending Status = "PENDING"

	// StatusAssigned indicates the task has an agent but work has not begun.
	StatusAssigned Status = "ASSIGNED"

	// StatusInProgress indicates the assigned agent is working on the task.
	StatusInProgress Status = "IN_PROGRESS"

	// StatusCompleted indicates the task finished successfully.
	StatusCompleted Status = "COMPLETED"

	// StatusFailed indicates the task failed.
	StatusFailed Status = "FAILED"

	// StatusCancelled indicates the task was cancelled before completion.
	StatusCancelled Status = "CANCELLED"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Task is a unit of work routed through the engine.
type Task struct {
	// ID uniquely identifies the task.
	ID string
	// Name is a short human-readable title.
	Name string
	// Description explains the work in full.
	Description string
	// Input is the arbitrary payload handed to the executing agent.
	Input any
	// Required is the set of capabilities an agent must have to qualify.
	Required []agent.Capability
	// Priority orders the task's messages in agent inboxes.
	Priority comms.Priority
	// Status is the current lifecycle state.
	Status Status
	// AssignedTo is the agent ID the task is assigned to, if any.
	AssignedTo string
	// ParentID links a subtask to its parent, if any.
	ParentID string
	// SubtaskIDs lists the task's direct children.
	SubtaskIDs []string
	// CreatedAt is when the task was created.
	CreatedAt time.Time
	// UpdatedAt is bumped by every state mutation.
	UpdatedAt time.Time
	// Deadline, if set, marks when the task becomes overdue.
	Deadline *time.Time
	// Metadata holds arbitrary key-value annotations.
	Metadata map[string]any
	// Result is the task's outcome once one exists.
	Result *Result
	// Tags are free-form labels for lookup.
	Tags []string
}

// New creates a task in PENDING state with a generated ID.
func New(name, description string, input any) *Task {
	now := time.Now()
	return &Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Input:       input,
		Priority:    comms.PriorityNormal,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		Metadata:    make(map[string]any),
	}
}

// Assign sets the assigned agent and moves the task to ASSIGNED. Assignment
// is valid from any state; reassignment simply replaces the agent.
func (t *Task) Assign(agentID string) {
	t.AssignedTo = agentID
	t.Status = StatusAssigned
	t.touch()
}

// Start moves the task to IN_PROGRESS. It is a no-op unless the current
// status is ASSIGNED.
func (t *Task) Start() {
	if t.Status != StatusAssigned {
		return
	}
	t.Status = StatusInProgress
	t.touch()
}

// Complete records the result and moves the task to COMPLETED.
func (t *Task) Complete(r *Result) {
	t.Result = r
	t.Status = StatusCompleted
	t.touch()
}

// Fail records the error and moves the task to FAILED. If the task has no
// result yet, a failed result is created; otherwise the existing result's
// error is updated.
func (t *Task) Fail(errMsg string) {
	if t.Result == nil {
		t.Result = FailedResult(t.ID, t.AssignedTo, errMsg)
	} else {
		t.Result.Error = errMsg
		t.Result.Status = StatusFailed
	}
	t.Status = StatusFailed
	t.touch()
}

// Cancel moves the task to CANCELLED.
func (t *Task) Cancel() {
	t.Status = StatusCancelled
	t.touch()
}

// IsOverdue returns true if the task has a deadline in the past,
// independent of status.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Deadline != nil && now.After(*t.Deadline)
}

// AddSubtask links a child task ID to this task.
func (t *Task) AddSubtask(id string) {
	t.SubtaskIDs = append(t.SubtaskIDs, id)
	t.touch()
}

// HasTag returns true if the task carries the given tag.
func (t *Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// AddTag appends a tag if not already present.
func (t *Task) AddTag(tag string) {
	if !t.HasTag(tag) {
		t.Tags = append(t.Tags, tag)
		t.touch()
	}
}

func (t *Task) touch() {
	t.UpdatedAt = time.Now()
}
