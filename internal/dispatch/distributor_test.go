package dispatch

import (
	"math"
	"testing"

	"github.com/openmesh-labs/agora/internal/agent"
	"github.com/openmesh-labs/agora/internal/event"
	"github.com/openmesh-labs/agora/internal/task"
)

func newRegistry(t *testing.T, caps map[string][]agent.Capability) *agent.Registry {
	t.Helper()
	reg := agent.NewRegistry()
	for id, cs := range caps {
		reg.RegisterHandle(agent.NewHandle(id, id, cs, nil))
	}
	return reg
}

func TestRoundRobin_CyclesOverQualifyingAgents(t *testing.T) {
	reg := newRegistry(t, map[string][]agent.Capability{
		"a1": {agent.CapabilityReasoning},
		"a2": {agent.CapabilityReasoning},
		"a3": {agent.CapabilityReasoning},
	})
	d := NewRoundRobin()

	var order []string
	for i := 0; i < 6; i++ {
		tk := task.New("t", "", nil)
		id, ok := d.Distribute(tk, reg)
		if !ok {
			t.Fatalf("Distribute() call %d declined", i)
		}
		order = append(order, id)
	}

	want := []string{"a1", "a2", "a3", "a1", "a2", "a3"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("rotation = %v, want %v", order, want)
		}
	}
}

func TestRoundRobin_SkipsUnqualifiedAgents(t *testing.T) {
	reg := newRegistry(t, map[string][]agent.Capability{
		"a1": {agent.CapabilityReasoning},
		"a2": {agent.CapabilitySummarization},
		"a3": {agent.CapabilityReasoning},
	})
	d := NewRoundRobin()

	for i := 0; i < 4; i++ {
		tk := task.New("t", "", nil)
		tk.Required = []agent.Capability{agent.CapabilityReasoning}
		id, ok := d.Distribute(tk, reg)
		if !ok {
			t.Fatalf("Distribute() call %d declined", i)
		}
		if id == "a2" {
			t.Fatal("assigned to agent lacking required capability")
		}
	}
}

func TestRoundRobin_NoCandidates(t *testing.T) {
	reg := newRegistry(t, map[string][]agent.Capability{
		"a1": {agent.CapabilityReasoning},
	})
	h, _ := reg.Get("a1")
	h.Deactivate()

	tk := task.New("t", "", nil)
	id, ok := NewRoundRobin().Distribute(tk, reg)
	if ok || id != "" {
		t.Errorf("Distribute() = (%q, %v), want declined", id, ok)
	}
	if tk.Status != task.StatusPending {
		t.Errorf("declined task status = %v, want PENDING", tk.Status)
	}
}

func TestCapabilityBased_PrefersBestMatch(t *testing.T) {
	reg := newRegistry(t, map[string][]agent.Capability{
		"a1": {agent.CapabilityReasoning},
		"a2": {agent.CapabilityReasoning, agent.CapabilityPlanning},
	})
	d := NewCapabilityBased()

	tk := task.New("t", "", nil)
	tk.Required = []agent.Capability{agent.CapabilityReasoning, agent.CapabilityPlanning}
	id, ok := d.Distribute(tk, reg)
	if !ok {
		t.Fatal("Distribute() declined")
	}
	if id != "a2" {
		t.Errorf("Distribute() = %q, want a2 (covers both requirements)", id)
	}
}

func TestCapabilityBased_LoadDiscountsScore(t *testing.T) {
	reg := newRegistry(t, map[string][]agent.Capability{
		"a1": {agent.CapabilityReasoning},
		"a2": {agent.CapabilityReasoning},
	})
	h1, _ := reg.Get("a1")
	h1.SetLoad(0.8)

	tk := task.New("t", "", nil)
	tk.Required = []agent.Capability{agent.CapabilityReasoning}
	id, ok := NewCapabilityBased().Distribute(tk, reg)
	if !ok || id != "a2" {
		t.Errorf("Distribute() = (%q, %v), want a2 (lower load)", id, ok)
	}
}

func TestCapabilityBased_NoRequirementsPicksFirstActive(t *testing.T) {
	reg := newRegistry(t, map[string][]agent.Capability{
		"b": nil,
		"a": nil,
		"c": nil,
	})

	tk := task.New("t", "", nil)
	id, ok := NewCapabilityBased().Distribute(tk, reg)
	if !ok || id != "a" {
		t.Errorf("Distribute() = (%q, %v), want first agent in ID order", id, ok)
	}
}

func TestCapabilityBased_TieBreakIsIDOrder(t *testing.T) {
	// All candidates fully loaded: every score is zero, the first in ID
	// order must win.
	reg := newRegistry(t, map[string][]agent.Capability{
		"a2": {agent.CapabilityReasoning},
		"a1": {agent.CapabilityReasoning},
	})
	for _, h := range reg.All() {
		h.SetLoad(1.0)
	}

	tk := task.New("t", "", nil)
	tk.Required = []agent.Capability{agent.CapabilityReasoning}
	id, ok := NewCapabilityBased().Distribute(tk, reg)
	if !ok || id != "a1" {
		t.Errorf("Distribute() = (%q, %v), want a1 on tie", id, ok)
	}
}

func TestLoadBalanced_PicksLeastLoaded(t *testing.T) {
	reg := newRegistry(t, map[string][]agent.Capability{
		"a1": nil,
		"a2": nil,
		"a3": nil,
	})
	for id, load := range map[string]float64{"a1": 0.5, "a2": 0.2, "a3": 0.9} {
		h, _ := reg.Get(id)
		h.SetLoad(load)
	}

	tk := task.New("t", "", nil)
	id, ok := NewLoadBalanced().Distribute(tk, reg)
	if !ok || id != "a2" {
		t.Errorf("Distribute() = (%q, %v), want a2 (lowest load)", id, ok)
	}
}

func TestLoadBalanced_TieBreakIsIDOrder(t *testing.T) {
	reg := newRegistry(t, map[string][]agent.Capability{
		"a3": nil,
		"a1": nil,
		"a2": nil,
	})

	tk := task.New("t", "", nil)
	id, ok := NewLoadBalanced().Distribute(tk, reg)
	if !ok || id != "a1" {
		t.Errorf("Distribute() = (%q, %v), want a1 on tie", id, ok)
	}
}

func TestDistribute_AssignsTaskAndAddsLoad(t *testing.T) {
	distributors := []Distributor{
		NewRoundRobin(),
		NewCapabilityBased(),
		NewLoadBalanced(),
	}
	for _, d := range distributors {
		reg := newRegistry(t, map[string][]agent.Capability{"a1": nil})

		tk := task.New("t", "", nil)
		id, ok := d.Distribute(tk, reg)
		if !ok {
			t.Fatalf("%s: Distribute() declined", d.Name())
		}

		if tk.Status != task.StatusAssigned || tk.AssignedTo != id {
			t.Errorf("%s: task status=%v assigned=%q", d.Name(), tk.Status, tk.AssignedTo)
		}
		h, _ := reg.Get(id)
		if math.Abs(h.Load()-0.1) > 1e-9 {
			t.Errorf("%s: Load() = %v, want 0.1", d.Name(), h.Load())
		}
	}
}

func TestDistribute_LoadCapsAtOne(t *testing.T) {
	reg := newRegistry(t, map[string][]agent.Capability{"a1": nil})
	d := NewLoadBalanced()

	for i := 0; i < 15; i++ {
		tk := task.New("t", "", nil)
		if _, ok := d.Distribute(tk, reg); !ok {
			t.Fatalf("Distribute() call %d declined", i)
		}
	}

	h, _ := reg.Get("a1")
	if h.Load() != 1.0 {
		t.Errorf("Load() = %v, want capped at 1.0", h.Load())
	}
}

func TestDistribute_PublishesEvent(t *testing.T) {
	bus := event.NewBus()
	var got []event.Event
	bus.Subscribe("task.distributed", func(e event.Event) {
		got = append(got, e)
	})

	reg := newRegistry(t, map[string][]agent.Capability{"a1": nil})
	d := NewRoundRobin(WithRoundRobinBus(bus))

	tk := task.New("t", "", nil)
	if _, ok := d.Distribute(tk, reg); !ok {
		t.Fatal("Distribute() declined")
	}
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
}
