package agent

import "context"

// Capability is a tag from a fixed enumeration describing what an agent can do.
type Capability string

const (
	// CapabilityReasoning indicates general multi-step reasoning.
	CapabilityReasoning Capability = "REASONING"

	// CapabilityPlanning indicates task decomposition and planning.
	CapabilityPlanning Capability = "PLANNING"

	// CapabilityTextGeneration indicates free-form text generation.
	CapabilityTextGeneration Capability = "TEXT_GENERATION"

	// CapabilitySummarization indicates summarizing longer content.
	CapabilitySummarization Capability = "SUMMARIZATION"

	// CapabilityCodeGeneration indicates producing source code.
	CapabilityCodeGeneration Capability = "CODE_GENERATION"

	// CapabilityTranslation indicates translating between languages.
	CapabilityTranslation Capability = "TRANSLATION"

	// CapabilityClassification indicates labeling inputs into categories.
	CapabilityClassification Capability = "CLASSIFICATION"

	// CapabilityCustom indicates a provider-specific capability described
	// in the agent's metadata.
	CapabilityCustom Capability = "CUSTOM"
)

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// IsValid returns true if this is a recognized capability value.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityReasoning, CapabilityPlanning, CapabilityTextGeneration,
		CapabilitySummarization, CapabilityCodeGeneration, CapabilityTranslation,
		CapabilityClassification, CapabilityCustom:
		return true
	default:
		return false
	}
}

// Info describes an agent to the engine.
type Info struct {
	// ID uniquely identifies the agent.
	ID string
	// Name is a human-readable display name.
	Name string
	// Capabilities are the tags the agent advertises.
	Capabilities []Capability
	// Metadata holds arbitrary provider-specific details.
	Metadata map[string]any
}

// Agent is the capability interface the engine consumes. Implementations
// are opaque task executors; the engine submits an input and receives a
// response without knowing how it was produced.
type Agent interface {
	// Process executes one input synchronously and returns the response.
	// The context bounds the call; implementations should honor
	// cancellation for long-running work.
	Process(ctx context.Context, input any) (any, error)

	// Info returns the agent's descriptive information.
	Info() Info
}

// FuncAgent adapts a plain function to the Agent interface. It is the
// simplest way to stand up scripted or echo agents for embedding services
// and tests.
type FuncAgent struct {
	info Info
	fn   func(ctx context.Context, input any) (any, error)
}

// NewFuncAgent creates a FuncAgent with the given identity and process
// function.
func NewFuncAgent(info Info, fn func(ctx context.Context, input any) (any, error)) *FuncAgent {
	return &FuncAgent{info: info, fn: fn}
}

// Process invokes the wrapped function.
func (a *FuncAgent) Process(ctx context.Context, input any) (any, error) {
	return a.fn(ctx, input)
}

// Info returns the agent's descriptive information.
func (a *FuncAgent) Info() Info {
	return a.info
}
