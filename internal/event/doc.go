// Package event provides a pub-sub event bus for decoupled observation of
// the coordination engine.
//
// Components publish events without knowing who will receive them: channels
// announce deliveries and drops, the registry announces agent registration,
// distributors announce assignments, and patterns announce coordination
// progress. Embedding applications subscribe to drive dashboards, logs, or
// metrics without the engine depending on any of those surfaces.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// Agent lifecycle:
//   - [AgentRegisteredEvent], [AgentUnregisteredEvent]
//
// Messaging:
//   - [MessageSentEvent]: A message was enqueued for at least one recipient
//   - [MessageDroppedEvent]: A message was rejected or expired
//
// Tasks:
//   - [TaskCreatedEvent], [TaskStatusEvent], [TaskDistributedEvent]
//
// Coordination:
//   - [CoordinationStartedEvent], [CoordinationFinishedEvent]
//   - [BidPlacedEvent]: An agent's bid was collected during a market round
//   - [ResultsAggregatedEvent]: An aggregator produced a combined result
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are invoked
// synchronously on the publisher's goroutine; a panicking handler is
// recovered and logged so it cannot block delivery to other handlers.
package event
