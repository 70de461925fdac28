package comms

import (
	"time"

	"github.com/openmesh-labs/agora/internal/agent"
)

// Broadcast delivers targeted messages point-to-point and fans broadcasts
// out to every active registered agent except the sender.
type Broadcast struct {
	base
	registry *agent.Registry
}

// NewBroadcast creates a Broadcast channel backed by the given registry.
// The registry supplies the active-agent set for fan-out.
func NewBroadcast(registry *agent.Registry, opts ...Option) *Broadcast {
	b := &Broadcast{registry: registry}
	b.init("broadcast", opts...)
	return b
}

// Send delivers the message. A concrete recipient gets the message
// directly; a broadcast goes to every active agent except the sender.
// Returns true iff at least one recipient received it.
func (b *Broadcast) Send(msg Message) bool {
	if msg.IsExpired(time.Now()) {
		return b.reject(msg, "expired")
	}

	if msg.To != "" && msg.Type != MessageBroadcast {
		b.deliver(msg.To, msg)
		return b.sent(msg, 1)
	}

	delivered := 0
	for _, h := range b.registry.Active() {
		if h.ID() == msg.From {
			continue
		}
		b.deliver(h.ID(), msg)
		delivered++
	}
	if delivered == 0 {
		return b.reject(msg, "no active recipients")
	}
	return b.sent(msg, delivered)
}
