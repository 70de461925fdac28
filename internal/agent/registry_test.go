package agent

import (
	"context"
	"sync"
	"testing"

	"github.com/openmesh-labs/agora/internal/event"
)

func echoAgent(id string, caps ...Capability) *FuncAgent {
	return NewFuncAgent(
		Info{ID: id, Name: id, Capabilities: caps},
		func(ctx context.Context, input any) (any, error) {
			return input, nil
		},
	)
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	h := reg.Register(echoAgent("a1", CapabilityReasoning))
	if h.ID() != "a1" {
		t.Errorf("ID() = %q, want %q", h.ID(), "a1")
	}

	got, ok := reg.Get("a1")
	if !ok {
		t.Fatal("Get() should find registered agent")
	}
	if got != h {
		t.Error("Get() returned a different handle")
	}
	if !got.HasCapability(CapabilityReasoning) {
		t.Error("handle should advertise REASONING")
	}
}

func TestRegistry_GetMissing(t *testing.T) {
	reg := NewRegistry()

	h, ok := reg.Get("nope")
	if ok || h != nil {
		t.Errorf("Get(missing) = (%v, %v), want (nil, false)", h, ok)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	reg := NewRegistry()
	reg.Register(echoAgent("a1"))

	if !reg.Unregister("a1") {
		t.Error("Unregister() = false, want true for present agent")
	}
	if reg.Unregister("a1") {
		t.Error("Unregister() = true, want false for absent agent")
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestRegistry_ActiveFiltersAndSorts(t *testing.T) {
	reg := NewRegistry()
	reg.Register(echoAgent("charlie"))
	reg.Register(echoAgent("alice"))
	bob := reg.Register(echoAgent("bob"))
	bob.Deactivate()

	active := reg.Active()
	if len(active) != 2 {
		t.Fatalf("Active() returned %d handles, want 2", len(active))
	}
	if active[0].ID() != "alice" || active[1].ID() != "charlie" {
		t.Errorf("Active() order = [%s %s], want [alice charlie]", active[0].ID(), active[1].ID())
	}

	bob.Activate()
	if len(reg.Active()) != 3 {
		t.Error("reactivated agent should appear in Active()")
	}
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	reg := NewRegistry()
	reg.Register(echoAgent("a1"))

	all := reg.All()
	delete(all, "a1")

	if reg.Len() != 1 {
		t.Error("mutating All() result should not affect the registry")
	}
}

func TestRegistry_ReplacesOnDuplicateID(t *testing.T) {
	reg := NewRegistry()
	reg.Register(echoAgent("a1", CapabilityReasoning))
	reg.Register(echoAgent("a1", CapabilityPlanning))

	h, _ := reg.Get("a1")
	if h.HasCapability(CapabilityReasoning) {
		t.Error("replaced handle should not keep old capabilities")
	}
	if !h.HasCapability(CapabilityPlanning) {
		t.Error("replaced handle should have new capabilities")
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestRegistry_PublishesEvents(t *testing.T) {
	bus := event.NewBus()
	var types []string
	bus.SubscribeAll(func(e event.Event) {
		types = append(types, e.EventType())
	})

	reg := NewRegistry(WithBus(bus))
	reg.Register(echoAgent("a1"))
	reg.Unregister("a1")
	reg.Unregister("a1") // absent, no event

	want := []string{"agent.registered", "agent.unregistered"}
	if len(types) != len(want) {
		t.Fatalf("got %d events %v, want %v", len(types), types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, types[i], want[i])
		}
	}
}

func TestHandle_Capabilities(t *testing.T) {
	h := NewHandle("a1", "one", []Capability{CapabilityReasoning, CapabilityPlanning}, nil)

	if !h.HasAllCapabilities([]Capability{CapabilityReasoning}) {
		t.Error("HasAllCapabilities(subset) = false, want true")
	}
	if h.HasAllCapabilities([]Capability{CapabilityReasoning, CapabilityTranslation}) {
		t.Error("HasAllCapabilities(superset) = true, want false")
	}
	if !h.HasAllCapabilities(nil) {
		t.Error("HasAllCapabilities(nil) = false, want true")
	}
	if got := h.MatchCount([]Capability{CapabilityReasoning, CapabilityTranslation}); got != 1 {
		t.Errorf("MatchCount() = %d, want 1", got)
	}
}

func TestHandle_LoadClamping(t *testing.T) {
	h := NewHandle("a1", "one", nil, nil)

	for i := 0; i < 15; i++ {
		h.AddLoad(0.1)
	}
	if h.Load() != 1.0 {
		t.Errorf("Load() = %v, want 1.0 after capping", h.Load())
	}

	h.AddLoad(-2.0)
	if h.Load() != 0.0 {
		t.Errorf("Load() = %v, want 0.0 after floor", h.Load())
	}

	h.SetLoad(0.5)
	if h.Load() != 0.5 {
		t.Errorf("Load() = %v, want 0.5", h.Load())
	}
	h.SetLoad(7)
	if h.Load() != 1.0 {
		t.Errorf("SetLoad should clamp, got %v", h.Load())
	}
}

func TestHandle_ActivationFlag(t *testing.T) {
	h := NewHandle("a1", "one", nil, nil)
	if !h.Active() {
		t.Error("handles should start active")
	}
	h.Deactivate()
	if h.Active() {
		t.Error("Deactivate() should clear the flag")
	}
	h.Activate()
	if !h.Active() {
		t.Error("Activate() should set the flag")
	}
}

func TestCapability_IsValid(t *testing.T) {
	valid := []Capability{
		CapabilityReasoning, CapabilityPlanning, CapabilityTextGeneration,
		CapabilitySummarization, CapabilityCodeGeneration, CapabilityTranslation,
		CapabilityClassification, CapabilityCustom,
	}
	for _, c := range valid {
		if !c.IsValid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if Capability("JUGGLING").IsValid() {
		t.Error("unknown capability should not be valid")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%5))
			reg.Register(echoAgent(id, CapabilityReasoning))
			reg.Get(id)
			reg.Active()
			if n%3 == 0 {
				reg.Unregister(id)
			}
		}(i)
	}
	wg.Wait()
}
