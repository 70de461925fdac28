package comms

import (
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the kind of inter-agent message.
type MessageType string

const (
	// MessageRequest asks the recipient to perform work.
	MessageRequest MessageType = "REQUEST"

	// MessageResponse answers a previous request.
	MessageResponse MessageType = "RESPONSE"

	// MessageNotification informs the recipient without expecting a reply.
	MessageNotification MessageType = "NOTIFICATION"

	// MessageBroadcast addresses all active agents.
	MessageBroadcast MessageType = "BROADCAST"

	// MessageError reports a failure to the recipient.
	MessageError MessageType = "ERROR"

	// MessageHeartbeat signals liveness.
	MessageHeartbeat MessageType = "HEARTBEAT"

	// MessageCustom carries an application-defined meaning.
	MessageCustom MessageType = "CUSTOM"
)

// String returns the string representation of the message type.
func (t MessageType) String() string {
	return string(t)
}

// Priority indicates the urgency of a message. Higher values are delivered
// first.
type Priority int

const (
	// PriorityLow is background traffic.
	PriorityLow Priority = iota
	// PriorityNormal is the default.
	PriorityNormal
	// PriorityHigh should be read promptly.
	PriorityHigh
	// PriorityUrgent preempts everything else in the inbox.
	PriorityUrgent
)

// String returns the string representation of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityNormal:
		return "NORMAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityUrgent:
		return "URGENT"
	default:
		return "UNKNOWN"
	}
}

// MetadataTopicKey is the metadata key a Topic channel stamps (and Send
// requires) to route a message.
const MetadataTopicKey = "topic"

// Message is a single inter-agent communication.
type Message struct {
	// ID uniquely identifies the message.
	ID string
	// From is the sender agent ID.
	From string
	// To is the recipient agent ID. Empty means broadcast.
	To string
	// Content is the arbitrary payload.
	Content any
	// Type categorizes the message.
	Type MessageType
	// Priority orders delivery within an inbox.
	Priority Priority
	// Timestamp is when the message was created.
	Timestamp time.Time
	// ReplyTo is the ID of the message this one answers, if any.
	ReplyTo string
	// Metadata holds arbitrary key-value annotations.
	Metadata map[string]any
	// ExpiresAt, if set, is the instant after which the message must not
	// be delivered.
	ExpiresAt *time.Time
}

// NewMessage creates a message with a generated ID and the current
// timestamp.
func NewMessage(from, to string, msgType MessageType, content any) Message {
	return Message{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Content:   content,
		Type:      msgType,
		Priority:  PriorityNormal,
		Timestamp: time.Now(),
		Metadata:  make(map[string]any),
	}
}

// IsBroadcast returns true if the message is addressed to all agents:
// either the recipient is absent or the type is BROADCAST.
func (m Message) IsBroadcast() bool {
	return m.To == "" || m.Type == MessageBroadcast
}

// IsExpired returns true if the message has an expiry in the past relative
// to now.
func (m Message) IsExpired(now time.Time) bool {
	return m.ExpiresAt != nil && now.After(*m.ExpiresAt)
}

// Topic returns the topic stamped into the message metadata, if any.
func (m Message) Topic() (string, bool) {
	if m.Metadata == nil {
		return "", false
	}
	topic, ok := m.Metadata[MetadataTopicKey].(string)
	return topic, ok && topic != ""
}
