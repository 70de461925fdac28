package comms

import (
	"sync"
	"time"

	"github.com/openmesh-labs/agora/internal/event"
	"github.com/openmesh-labs/agora/internal/logging"
)

// Channel is the contract shared by all message transports.
type Channel interface {
	// Name returns the channel's identifier.
	Name() string

	// Send enqueues a message for delivery. Returns false if the message
	// was rejected: expired, missing required addressing, or no eligible
	// recipients.
	Send(msg Message) bool

	// Receive dequeues the highest-priority message for the given agent,
	// blocking up to timeout. A zero or negative timeout blocks
	// indefinitely. Returns (zero, false) on timeout.
	Receive(agentID string, timeout time.Duration) (Message, bool)

	// HasMessages returns true if the agent's inbox is non-empty.
	HasMessages(agentID string) bool
}

// Option configures a channel.
type Option func(*base)

// WithBus attaches an event bus. When set, deliveries publish
// MessageSentEvent and rejections publish MessageDroppedEvent.
func WithBus(bus *event.Bus) Option {
	return func(b *base) {
		b.bus = bus
	}
}

// WithLogger attaches a structured logger for delivery diagnostics.
func WithLogger(logger *logging.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

// base holds the per-recipient inboxes shared by all channel variants.
type base struct {
	name    string
	mu      sync.RWMutex
	inboxes map[string]*inbox
	bus     *event.Bus
	logger  *logging.Logger
}

// init sets up an embedded base in place, so constructors never copy the
// mutex it carries.
func (b *base) init(name string, opts ...Option) {
	b.name = name
	b.inboxes = make(map[string]*inbox)
	b.logger = logging.NopLogger()
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithChannel(name)
}

// Name returns the channel's identifier.
func (b *base) Name() string { return b.name }

// inboxFor returns the agent's inbox, creating it on first use.
func (b *base) inboxFor(agentID string) *inbox {
	b.mu.RLock()
	in, ok := b.inboxes[agentID]
	b.mu.RUnlock()
	if ok {
		return in
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if in, ok = b.inboxes[agentID]; ok {
		return in
	}
	in = newInbox()
	b.inboxes[agentID] = in
	return in
}

// deliver enqueues the message into one recipient's inbox.
func (b *base) deliver(agentID string, msg Message) {
	b.inboxFor(agentID).push(msg)
}

// Receive dequeues the next message for the agent, blocking up to timeout.
func (b *base) Receive(agentID string, timeout time.Duration) (Message, bool) {
	return b.inboxFor(agentID).pop(timeout)
}

// HasMessages returns true if the agent's inbox is non-empty.
func (b *base) HasMessages(agentID string) bool {
	b.mu.RLock()
	in, ok := b.inboxes[agentID]
	b.mu.RUnlock()
	return ok && in.size() > 0
}

// reject records a refused message and returns false for convenience.
func (b *base) reject(msg Message, reason string) bool {
	b.logger.Debug("message dropped", "message_id", msg.ID, "from", msg.From, "reason", reason)
	if b.bus != nil {
		b.bus.Publish(event.NewMessageDroppedEvent(b.name, msg.ID, msg.From, reason))
	}
	return false
}

// sent records a successful enqueue and returns true for convenience.
func (b *base) sent(msg Message, recipients int) bool {
	b.logger.Debug("message sent",
		"message_id", msg.ID, "from", msg.From, "to", msg.To,
		"type", msg.Type.String(), "priority", msg.Priority.String(),
		"recipients", recipients)
	if b.bus != nil {
		b.bus.Publish(event.NewMessageSentEvent(
			b.name, msg.ID, msg.From, msg.To,
			msg.Type.String(), msg.Priority.String(), recipients))
	}
	return true
}
