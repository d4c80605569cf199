package agent

import (
	"context"

	"github.com/hupe1980/agentcrew/core"
)

// RespondFunc computes the reply of a FuncAgent.
type RespondFunc func(ctx context.Context, turn *core.Turn) (core.Message, error)

// FuncAgent adapts a plain function to core.Agent. Errors returned by the
// function are wrapped as *core.AgentFailure; context errors pass through so
// the runtime can classify cancellation and timeouts.
type FuncAgent struct {
	BaseAgent
	fn RespondFunc
}

// NewFuncAgent creates a FuncAgent.
func NewFuncAgent(name, description string, fn RespondFunc) *FuncAgent {
	a := &FuncAgent{BaseAgent: NewBaseAgent(name), fn: fn}
	if description != "" {
		a.SetDescription(description)
	}
	return a
}

// Respond implements core.Agent.
func (a *FuncAgent) Respond(ctx context.Context, turn *core.Turn) (core.Message, error) {
	msg, err := a.fn(ctx, turn)
	if err != nil {
		if ctx.Err() != nil {
			return core.Message{}, ctx.Err()
		}
		return core.Message{}, core.NewAgentFailure(a.Name(), err)
	}
	if msg.Author == "" {
		msg.Author = a.Name()
	}
	if msg.Role == "" {
		msg.Role = core.RoleAssistant
	}
	return msg, nil
}
