package runtime

import (
	"context"

	"github.com/hupe1980/agentcrew/core"
)

// StepKind enumerates what a session does next.
type StepKind int

const (
	// StepAgent delivers a turn to an agent.
	StepAgent StepKind = iota
	// StepInput asks the human input provider.
	StepInput
	// StepDone resolves the session with an output message.
	StepDone
)

func (k StepKind) String() string {
	switch k {
	case StepAgent:
		return "agent"
	case StepInput:
		return "input"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// Step is the decision returned by Policy.Next.
type Step struct {
	Kind     StepKind
	Agent    string               // StepAgent: recipient
	Handoffs []core.HandoffOption // StepAgent: transfers offered in the turn
	Output   core.Message         // StepDone: orchestration output
}

// AgentStep selects agent for the next turn.
func AgentStep(agent string, handoffs ...core.HandoffOption) Step {
	return Step{Kind: StepAgent, Agent: agent, Handoffs: handoffs}
}

// InputStep requests human input.
func InputStep() Step { return Step{Kind: StepInput} }

// DoneStep ends the session with output.
func DoneStep(output core.Message) Step { return Step{Kind: StepDone, Output: output} }

// Policy is the control policy attached to a session. Both methods are called
// from the session loop only, so implementations may keep unsynchronized
// per-session state.
type Policy interface {
	// Name identifies the policy in logs.
	Name() string

	// Next decides the next step given the session so far.
	Next(ctx context.Context, s *Session) (Step, error)

	// Accept is called after msg, produced by author for the preceding step,
	// has been appended. A returned error fails the session.
	Accept(ctx context.Context, s *Session, author string, msg core.Message) error
}
