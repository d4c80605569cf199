package agent

import (
	"fmt"
)

// BaseAgent bundles the identity helpers shared by concrete agents. Embed it
// and supply a Respond method to satisfy the core.Agent interface.
type BaseAgent struct {
	name        string // Unique name within a roster
	description string // Shown to other agents as handoff rationale fallback
}

// NewBaseAgent constructs a BaseAgent with generated description (customizable via SetDescription).
func NewBaseAgent(name string) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
	}
}

// Name returns the agent's unique name.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description. Call it before the agent
// joins an orchestration.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }
