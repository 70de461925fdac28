package comms

import "time"

// Direct is a point-to-point channel. It has no broadcast support: any
// message without a concrete recipient is rejected.
type Direct struct {
	base
}

// NewDirect creates a Direct channel.
func NewDirect(opts ...Option) *Direct {
	d := &Direct{}
	d.init("direct", opts...)
	return d
}

// Send enqueues the message into the recipient's inbox. Returns false for
// expired messages and for messages without a recipient.
func (d *Direct) Send(msg Message) bool {
	if msg.IsExpired(time.Now()) {
		return d.reject(msg, "expired")
	}
	if msg.To == "" {
		return d.reject(msg, "no recipient")
	}

	d.deliver(msg.To, msg)
	return d.sent(msg, 1)
}
