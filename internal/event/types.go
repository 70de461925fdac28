package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "agent.registered", "task.distributed").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Agent Lifecycle Events
// -----------------------------------------------------------------------------

// AgentRegisteredEvent is emitted when an agent is added to a registry.
type AgentRegisteredEvent struct {
	baseEvent
	AgentID      string   // Unique identifier for the agent
	Name         string   // Human-readable agent name
	Capabilities []string // Capability tags the agent advertises
}

// NewAgentRegisteredEvent creates an AgentRegisteredEvent.
func NewAgentRegisteredEvent(agentID, name string, capabilities []string) AgentRegisteredEvent {
	return AgentRegisteredEvent{
		baseEvent:    newBaseEvent("agent.registered"),
		AgentID:      agentID,
		Name:         name,
		Capabilities: capabilities,
	}
}

// AgentUnregisteredEvent is emitted when an agent is removed from a registry.
type AgentUnregisteredEvent struct {
	baseEvent
	AgentID string // Unique identifier for the agent
}

// NewAgentUnregisteredEvent creates an AgentUnregisteredEvent.
func NewAgentUnregisteredEvent(agentID string) AgentUnregisteredEvent {
	return AgentUnregisteredEvent{
		baseEvent: newBaseEvent("agent.unregistered"),
		AgentID:   agentID,
	}
}

// -----------------------------------------------------------------------------
// Messaging Events
// -----------------------------------------------------------------------------

// MessageSentEvent is emitted when a channel enqueues a message for at least
// one recipient.
type MessageSentEvent struct {
	baseEvent
	Channel    string // Channel name
	MessageID  string // Message identifier
	From       string // Sender agent ID
	To         string // Recipient agent ID; empty for broadcast fan-out
	Type       string // Message type
	Priority   string // Message priority
	Recipients int    // Number of inboxes the message was enqueued into
}

// NewMessageSentEvent creates a MessageSentEvent.
func NewMessageSentEvent(channel, messageID, from, to, msgType, priority string, recipients int) MessageSentEvent {
	return MessageSentEvent{
		baseEvent:  newBaseEvent("message.sent"),
		Channel:    channel,
		MessageID:  messageID,
		From:       from,
		To:         to,
		Type:       msgType,
		Priority:   priority,
		Recipients: recipients,
	}
}

// MessageDroppedEvent is emitted when a channel rejects a message: expired
// at send, missing a recipient on a direct channel, missing a topic, or a
// broadcast with no eligible recipients.
type MessageDroppedEvent struct {
	baseEvent
	Channel   string // Channel name
	MessageID string // Message identifier
	From      string // Sender agent ID
	Reason    string // Why the message was not delivered
}

// NewMessageDroppedEvent creates a MessageDroppedEvent.
func NewMessageDroppedEvent(channel, messageID, from, reason string) MessageDroppedEvent {
	return MessageDroppedEvent{
		baseEvent: newBaseEvent("message.dropped"),
		Channel:   channel,
		MessageID: messageID,
		From:      from,
		Reason:    reason,
	}
}

// -----------------------------------------------------------------------------
// Task Events
// -----------------------------------------------------------------------------

// TaskCreatedEvent is emitted when the coordinator creates a task.
type TaskCreatedEvent struct {
	baseEvent
	TaskID   string // Task identifier
	Name     string // Task name
	ParentID string // Parent task ID, if this is a subtask
}

// NewTaskCreatedEvent creates a TaskCreatedEvent.
func NewTaskCreatedEvent(taskID, name, parentID string) TaskCreatedEvent {
	return TaskCreatedEvent{
		baseEvent: newBaseEvent("task.created"),
		TaskID:    taskID,
		Name:      name,
		ParentID:  parentID,
	}
}

// TaskStatusEvent is emitted when a task transitions between states.
type TaskStatusEvent struct {
	baseEvent
	TaskID string // Task identifier
	From   string // Previous status
	To     string // New status
}

// NewTaskStatusEvent creates a TaskStatusEvent.
func NewTaskStatusEvent(taskID, from, to string) TaskStatusEvent {
	return TaskStatusEvent{
		baseEvent: newBaseEvent("task.status"),
		TaskID:    taskID,
		From:      from,
		To:        to,
	}
}

// TaskDistributedEvent is emitted when a distributor assigns a task.
type TaskDistributedEvent struct {
	baseEvent
	TaskID      string // Task identifier
	AgentID     string // Agent the task was assigned to
	Distributor string // Distributor name
}

// NewTaskDistributedEvent creates a TaskDistributedEvent.
func NewTaskDistributedEvent(taskID, agentID, distributor string) TaskDistributedEvent {
	return TaskDistributedEvent{
		baseEvent:   newBaseEvent("task.distributed"),
		TaskID:      taskID,
		AgentID:     agentID,
		Distributor: distributor,
	}
}

// -----------------------------------------------------------------------------
// Coordination Events
// -----------------------------------------------------------------------------

// CoordinationStartedEvent is emitted when a pattern begins coordinating a task.
type CoordinationStartedEvent struct {
	baseEvent
	TaskID  string   // Task identifier
	Pattern string   // Pattern name
	Agents  []string // Participating agent IDs
}

// NewCoordinationStartedEvent creates a CoordinationStartedEvent.
func NewCoordinationStartedEvent(taskID, pattern string, agents []string) CoordinationStartedEvent {
	return CoordinationStartedEvent{
		baseEvent: newBaseEvent("coordination.started"),
		TaskID:    taskID,
		Pattern:   pattern,
		Agents:    agents,
	}
}

// CoordinationFinishedEvent is emitted when a pattern produces its final result.
type CoordinationFinishedEvent struct {
	baseEvent
	TaskID  string // Task identifier
	Pattern string // Pattern name
	Success bool   // Whether the final result is successful
	Error   string // Error message if the result failed
}

// NewCoordinationFinishedEvent creates a CoordinationFinishedEvent.
func NewCoordinationFinishedEvent(taskID, pattern string, success bool, errMsg string) CoordinationFinishedEvent {
	return CoordinationFinishedEvent{
		baseEvent: newBaseEvent("coordination.finished"),
		TaskID:    taskID,
		Pattern:   pattern,
		Success:   success,
		Error:     errMsg,
	}
}

// BidPlacedEvent is emitted when a market-based round collects a bid.
type BidPlacedEvent struct {
	baseEvent
	TaskID  string  // Task being auctioned
	AgentID string  // Bidding agent
	Bid     float64 // Bid value
}

// NewBidPlacedEvent creates a BidPlacedEvent.
func NewBidPlacedEvent(taskID, agentID string, bid float64) BidPlacedEvent {
	return BidPlacedEvent{
		baseEvent: newBaseEvent("coordination.bid"),
		TaskID:    taskID,
		AgentID:   agentID,
		Bid:       bid,
	}
}

// ResultsAggregatedEvent is emitted when an aggregator combines results.
type ResultsAggregatedEvent struct {
	baseEvent
	Aggregator string // Aggregator name
	Inputs     int    // Number of input results
	Success    bool   // Whether the combined result is successful
}

// NewResultsAggregatedEvent creates a ResultsAggregatedEvent.
func NewResultsAggregatedEvent(aggregator string, inputs int, success bool) ResultsAggregatedEvent {
	return ResultsAggregatedEvent{
		baseEvent:  newBaseEvent("aggregate.finished"),
		Aggregator: aggregator,
		Inputs:     inputs,
		Success:    success,
	}
}
