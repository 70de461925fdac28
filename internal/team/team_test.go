package team

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/openmesh-labs/agora/internal/agent"
	"github.com/openmesh-labs/agora/internal/coordination"
	"github.com/openmesh-labs/agora/internal/errors"
)

func newTeam(t *testing.T) (*Team, *coordination.Coordinator) {
	t.Helper()
	c := coordination.New()
	for _, id := range []string{"agent-r", "agent-w"} {
		id := id
		c.Registry().Register(agent.NewFuncAgent(
			agent.Info{ID: id, Name: id},
			func(_ context.Context, input any) (any, error) {
				return fmt.Sprintf("%s handled %v", id, input), nil
			},
		))
	}
	return New("editorial", "writes things", c), c
}

func TestTeam_AddRole(t *testing.T) {
	tm, _ := newTeam(t)

	if err := tm.AddRole("researcher", "agent-r", "digs things up"); err != nil {
		t.Fatalf("AddRole() error = %v", err)
	}
	if err := tm.AddRole("ghost", "missing-agent", ""); !errors.Is(err, errors.ErrAgentNotFound) {
		t.Errorf("AddRole() error = %v, want ErrAgentNotFound", err)
	}

	id, ok := tm.AgentFor("researcher")
	if !ok || id != "agent-r" {
		t.Errorf("AgentFor() = (%q, %v), want agent-r", id, ok)
	}
	if desc := tm.Describe()["researcher"]; desc != "digs things up" {
		t.Errorf("Describe() = %q", desc)
	}
}

func TestTeam_RemoveRole(t *testing.T) {
	tm, _ := newTeam(t)
	tm.AddRole("researcher", "agent-r", "")

	if !tm.RemoveRole("researcher") {
		t.Error("RemoveRole() = false, want true for existing role")
	}
	if tm.RemoveRole("researcher") {
		t.Error("RemoveRole() = true, want false for removed role")
	}
	if _, ok := tm.AgentFor("researcher"); ok {
		t.Error("AgentFor() should miss after removal")
	}
}

func TestTeam_Roles(t *testing.T) {
	tm, _ := newTeam(t)
	tm.AddRole("writer", "agent-w", "")
	tm.AddRole("researcher", "agent-r", "")

	got := tm.Roles()
	if len(got) != 2 || got[0] != "researcher" || got[1] != "writer" {
		t.Errorf("Roles() = %v, want sorted [researcher writer]", got)
	}
}

func TestTeam_SendToRole(t *testing.T) {
	tm, c := newTeam(t)
	tm.AddRole("researcher", "agent-r", "")
	tm.AddRole("writer", "agent-w", "")

	if err := tm.SendToRole("researcher", "writer", "draft this"); err != nil {
		t.Fatalf("SendToRole() error = %v", err)
	}

	msg, ok, err := c.ReceiveMessage(coordination.ChannelDirect, "agent-w", time.Second)
	if err != nil || !ok {
		t.Fatalf("ReceiveMessage() = (%v, %v)", ok, err)
	}
	if msg.Content != "draft this" {
		t.Errorf("Content = %v", msg.Content)
	}
	if msg.Metadata[MetadataFromRole] != "researcher" || msg.Metadata[MetadataToRole] != "writer" {
		t.Errorf("Metadata = %v, want role stamps", msg.Metadata)
	}

	if err := tm.SendToRole("ghost", "writer", "x"); !errors.Is(err, errors.ErrRoleNotFound) {
		t.Errorf("SendToRole() error = %v, want ErrRoleNotFound", err)
	}
	if err := tm.SendToRole("researcher", "ghost", "x"); !errors.Is(err, errors.ErrRoleNotFound) {
		t.Errorf("SendToRole() error = %v, want ErrRoleNotFound", err)
	}
}

func TestTeam_ProcessWithRole(t *testing.T) {
	tm, _ := newTeam(t)
	tm.AddRole("researcher", "agent-r", "")

	out, err := tm.ProcessWithRole(context.Background(), "researcher", "topic")
	if err != nil {
		t.Fatalf("ProcessWithRole() error = %v", err)
	}
	if out != "agent-r handled topic" {
		t.Errorf("output = %v", out)
	}

	if _, err := tm.ProcessWithRole(context.Background(), "ghost", "x"); !errors.Is(err, errors.ErrRoleNotFound) {
		t.Errorf("error = %v, want ErrRoleNotFound", err)
	}
}

func TestWorkflow_Validate(t *testing.T) {
	tm, _ := newTeam(t)

	cases := []struct {
		name string
		step Step
	}{
		{"unknown action", Step{Role: "r", Action: "teleport"}},
		{"missing role", Step{Action: ActionProcess}},
		{"missing recipient", Step{Role: "r", Action: ActionSendMessage}},
	}
	for _, tc := range cases {
		w := NewWorkflow(tm, []Step{tc.step})
		if err := w.Validate(); !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("%s: Validate() error = %v, want ValidationError", tc.name, err)
		}
	}

	ok := NewWorkflow(tm, []Step{
		{Role: "r", Action: ActionProcess, Input: "x"},
		{Role: "r", Action: ActionSendMessage, To: "w", Input: "y"},
	})
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() error = %v for well-formed workflow", err)
	}
}

func TestWorkflow_ExecuteSubstitutesPlaceholders(t *testing.T) {
	tm, _ := newTeam(t)
	tm.AddRole("researcher", "agent-r", "")
	tm.AddRole("writer", "agent-w", "")

	w := NewWorkflow(tm, []Step{
		{Role: "researcher", Action: ActionProcess, Input: "find sources"},
		{Role: "writer", Action: ActionProcess, Input: "write up: {researcher_result}"},
	})

	results, err := w.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	second := results[1].Output.(string)
	if !strings.Contains(second, "agent-r handled find sources") {
		t.Errorf("second step output = %q, want substituted researcher result", second)
	}
}

func TestWorkflow_ExecuteSendMessageStep(t *testing.T) {
	tm, _ := newTeam(t)
	tm.AddRole("researcher", "agent-r", "")
	tm.AddRole("writer", "agent-w", "")

	w := NewWorkflow(tm, []Step{
		{Role: "researcher", Action: ActionSendMessage, To: "writer", Input: "handoff"},
	})

	results, err := w.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if results[0].Role != "writer" {
		t.Errorf("acting role = %q, want the recipient", results[0].Role)
	}
	if results[0].Output != "agent-w handled handoff" {
		t.Errorf("Output = %v", results[0].Output)
	}
}

func TestWorkflow_ExecuteUnknownRoleAborts(t *testing.T) {
	tm, _ := newTeam(t)
	tm.AddRole("researcher", "agent-r", "")

	w := NewWorkflow(tm, []Step{
		{Role: "researcher", Action: ActionProcess, Input: "a"},
		{Role: "ghost", Action: ActionProcess, Input: "b"},
	})

	results, err := w.Execute(context.Background())
	if !errors.Is(err, errors.ErrRoleNotFound) {
		t.Fatalf("Execute() error = %v, want ErrRoleNotFound", err)
	}
	if len(results) != 1 {
		t.Errorf("len(results) = %d, want the completed first step", len(results))
	}
}

func TestWorkflow_ExecuteAsync(t *testing.T) {
	tm, _ := newTeam(t)
	tm.AddRole("researcher", "agent-r", "")

	w := NewWorkflow(tm, []Step{
		{Role: "researcher", Action: ActionProcess, Input: "async run"},
	})

	select {
	case outcome := <-w.ExecuteAsync(context.Background()):
		if outcome.Err != nil {
			t.Fatalf("ExecuteAsync() error = %v", outcome.Err)
		}
		if len(outcome.Results) != 1 {
			t.Errorf("len(Results) = %d, want 1", len(outcome.Results))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ExecuteAsync() timed out")
	}
}
