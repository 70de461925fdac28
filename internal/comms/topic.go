package comms

import (
	"sort"
	"sync"
	"time"
)

// Topic is a subscription-based channel. Agents subscribe to named topics;
// publishing to a topic fans the message out to every subscriber except the
// sender.
type Topic struct {
	base
	subMu       sync.RWMutex
	byAgent     map[string]map[string]struct{} // agentID -> topics
	subscribers map[string]map[string]struct{} // topic -> agentIDs
}

// NewTopic creates a Topic channel.
func NewTopic(opts ...Option) *Topic {
	t := &Topic{
		byAgent:     make(map[string]map[string]struct{}),
		subscribers: make(map[string]map[string]struct{}),
	}
	t.init("topic", opts...)
	return t
}

// Subscribe adds the agent to the topic's subscriber set.
func (t *Topic) Subscribe(agentID, topic string) {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	if t.byAgent[agentID] == nil {
		t.byAgent[agentID] = make(map[string]struct{})
	}
	t.byAgent[agentID][topic] = struct{}{}

	if t.subscribers[topic] == nil {
		t.subscribers[topic] = make(map[string]struct{})
	}
	t.subscribers[topic][agentID] = struct{}{}
}

// Unsubscribe removes the agent from the topic's subscriber set.
func (t *Topic) Unsubscribe(agentID, topic string) {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	t.removeLocked(agentID, topic)
}

// UnsubscribeAll removes the agent from every topic it is subscribed to.
func (t *Topic) UnsubscribeAll(agentID string) {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	for topic := range t.byAgent[agentID] {
		t.removeLocked(agentID, topic)
	}
}

// removeLocked drops one agent-topic edge from both indexes.
// Caller must hold subMu.
func (t *Topic) removeLocked(agentID, topic string) {
	if topics := t.byAgent[agentID]; topics != nil {
		delete(topics, topic)
		if len(topics) == 0 {
			delete(t.byAgent, agentID)
		}
	}
	if agents := t.subscribers[topic]; agents != nil {
		delete(agents, agentID)
		if len(agents) == 0 {
			delete(t.subscribers, topic)
		}
	}
}

// Subscriptions returns the topics the agent is subscribed to, sorted.
func (t *Topic) Subscriptions(agentID string) []string {
	t.subMu.RLock()
	defer t.subMu.RUnlock()

	out := make([]string, 0, len(t.byAgent[agentID]))
	for topic := range t.byAgent[agentID] {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

// Subscribers returns the agent IDs subscribed to the topic, sorted.
func (t *Topic) Subscribers(topic string) []string {
	t.subMu.RLock()
	defer t.subMu.RUnlock()

	out := make([]string, 0, len(t.subscribers[topic]))
	for id := range t.subscribers[topic] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Publish stamps the topic into the message metadata and fans it out to all
// subscribers except the sender. Returns false iff the message is expired
// or the topic has no subscribers at call time.
func (t *Topic) Publish(topic string, msg Message) bool {
	if msg.IsExpired(time.Now()) {
		return t.reject(msg, "expired")
	}

	if msg.Metadata == nil {
		msg.Metadata = make(map[string]any)
	}
	msg.Metadata[MetadataTopicKey] = topic

	subs := t.Subscribers(topic)
	if len(subs) == 0 {
		return t.reject(msg, "no subscribers")
	}

	delivered := 0
	for _, id := range subs {
		if id == msg.From {
			continue
		}
		t.deliver(id, msg)
		delivered++
	}
	return t.sent(msg, delivered)
}

// Send routes the message by the topic already stamped in its metadata.
// Returns false if the metadata carries no topic.
func (t *Topic) Send(msg Message) bool {
	topic, ok := msg.Topic()
	if !ok {
		return t.reject(msg, "no topic in metadata")
	}
	return t.Publish(topic, msg)
}
