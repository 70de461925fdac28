// Package team layers named roles over the coordination engine. A Team maps
// role names to agent IDs and offers role-to-role messaging plus linear
// workflow execution, so embedding code can write "researcher hands off to
// writer" instead of wiring agent IDs directly.
package team

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/openmesh-labs/agora/internal/comms"
	"github.com/openmesh-labs/agora/internal/coordination"
	"github.com/openmesh-labs/agora/internal/errors"
)

// DefaultReceiveTimeout bounds the wait for a routed role message.
const DefaultReceiveTimeout = 10 * time.Second

// Metadata keys stamped on role-routed messages.
const (
	MetadataFromRole = "from_role"
	MetadataToRole   = "to_role"
)

// Team is a role-name-to-agent-ID mapping over a Coordinator. Safe for
// concurrent use.
type Team struct {
	name        string
	description string
	coordinator *coordination.Coordinator
	channelName string
	timeout     time.Duration

	mu           sync.RWMutex
	roles        map[string]string
	descriptions map[string]string
}

// TeamOption configures a Team.
type TeamOption func(*Team)

// WithChannel routes role messages through the named channel instead of the
// default direct channel.
func WithChannel(name string) TeamOption {
	return func(t *Team) { t.channelName = name }
}

// WithReceiveTimeout overrides the wait for routed role messages.
func WithReceiveTimeout(d time.Duration) TeamOption {
	return func(t *Team) { t.timeout = d }
}

// New creates a Team over the given coordinator.
func New(name, description string, c *coordination.Coordinator, opts ...TeamOption) *Team {
	t := &Team{
		name:         name,
		description:  description,
		coordinator:  c,
		channelName:  coordination.ChannelDirect,
		timeout:      DefaultReceiveTimeout,
		roles:        make(map[string]string),
		descriptions: make(map[string]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the team's name.
func (t *Team) Name() string { return t.name }

// Description returns the team's description.
func (t *Team) Description() string { return t.description }

// AddRole maps a role name to an agent. The agent must already be registered
// with the coordinator.
func (t *Team) AddRole(role, agentID, description string) error {
	if _, ok := t.coordinator.Registry().Get(agentID); !ok {
		return errors.NewNotFoundError("agent", agentID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.roles[role] = agentID
	t.descriptions[role] = description
	return nil
}

// RemoveRole deletes a role mapping. Returns true if the role existed.
func (t *Team) RemoveRole(role string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.roles[role]
	if ok {
		delete(t.roles, role)
		delete(t.descriptions, role)
	}
	return ok
}

// AgentFor resolves a role to its agent ID.
func (t *Team) AgentFor(role string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.roles[role]
	return id, ok
}

// Roles lists the team's role names, sorted.
func (t *Team) Roles() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.roles))
	for role := range t.roles {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

// Describe returns a copy of the role-to-description mapping.
func (t *Team) Describe() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]string, len(t.descriptions))
	for role, desc := range t.descriptions {
		out[role] = desc
	}
	return out
}

// SendToRole routes a message from one role to another through the team's
// channel, stamping from_role/to_role metadata.
func (t *Team) SendToRole(fromRole, toRole string, content any) error {
	fromID, ok := t.AgentFor(fromRole)
	if !ok {
		return errors.NewNotFoundError("role", fromRole)
	}
	toID, ok := t.AgentFor(toRole)
	if !ok {
		return errors.NewNotFoundError("role", toRole)
	}

	msg := comms.NewMessage(fromID, toID, comms.MessageRequest, content)
	msg.Metadata[MetadataFromRole] = fromRole
	msg.Metadata[MetadataToRole] = toRole

	if _, err := t.coordinator.SendMessage(t.channelName, msg); err != nil {
		return err
	}
	return nil
}

// ProcessWithRole calls the role's agent implementation directly.
func (t *Team) ProcessWithRole(ctx context.Context, role string, input any) (any, error) {
	agentID, ok := t.AgentFor(role)
	if !ok {
		return nil, errors.NewNotFoundError("role", role)
	}
	h, ok := t.coordinator.Registry().Get(agentID)
	if !ok {
		return nil, errors.NewNotFoundError("agent", agentID)
	}
	impl := h.Impl()
	if impl == nil {
		return nil, errors.NewNotFoundError("agent", agentID)
	}
	return impl.Process(ctx, input)
}

// receiveForRole dequeues the next routed message for a role's agent.
func (t *Team) receiveForRole(role string) (comms.Message, bool, error) {
	agentID, ok := t.AgentFor(role)
	if !ok {
		return comms.Message{}, false, errors.NewNotFoundError("role", role)
	}
	return t.coordinator.ReceiveMessage(t.channelName, agentID, t.timeout)
}
