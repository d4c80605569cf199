package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentcrew/core"
)

// Reply is one scripted step of a ScriptedAgent.
type Reply struct {
	Text       string
	Transfer   *core.Transfer
	Completion *core.Completion
	Err        error
	Delay      time.Duration // wait before replying, aborted by cancellation
}

// ScriptedAgent replies with a fixed sequence of steps regardless of the
// conversation. When the script is exhausted it keeps replaying the last
// step; an empty script answers with "<name> turn <n>".
//
// ScriptedAgent is safe for concurrent use and records every turn it
// receives.
type ScriptedAgent struct {
	BaseAgent
	mu     sync.Mutex
	script []Reply
	next   int
	turns  []core.Turn
}

// NewScriptedAgent creates a ScriptedAgent answering with the given texts.
func NewScriptedAgent(name string, texts ...string) *ScriptedAgent {
	a := &ScriptedAgent{BaseAgent: NewBaseAgent(name)}
	for _, t := range texts {
		a.script = append(a.script, Reply{Text: t})
	}
	return a
}

// Then appends raw steps to the script.
func (a *ScriptedAgent) Then(steps ...Reply) *ScriptedAgent {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.script = append(a.script, steps...)
	return a
}

// ThenSay appends a plain text reply.
func (a *ScriptedAgent) ThenSay(text string) *ScriptedAgent {
	return a.Then(Reply{Text: text})
}

// ThenTransfer appends a reply requesting a handoff to target.
func (a *ScriptedAgent) ThenTransfer(target, reason string) *ScriptedAgent {
	return a.Then(Reply{Transfer: &core.Transfer{Target: target, Reason: reason}})
}

// ThenComplete appends a reply completing the task.
func (a *ScriptedAgent) ThenComplete(summary string) *ScriptedAgent {
	return a.Then(Reply{Completion: &core.Completion{Summary: summary}})
}

// ThenFail appends a step returning err.
func (a *ScriptedAgent) ThenFail(err error) *ScriptedAgent {
	return a.Then(Reply{Err: err})
}

// Turns returns a copy of the turns received so far.
func (a *ScriptedAgent) Turns() []core.Turn {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]core.Turn, len(a.turns))
	copy(out, a.turns)
	return out
}

// Calls returns how many times Respond has been invoked.
func (a *ScriptedAgent) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.turns)
}

// Respond implements core.Agent.
func (a *ScriptedAgent) Respond(ctx context.Context, turn *core.Turn) (core.Message, error) {
	step, ok := a.advance(turn)
	if !ok {
		return core.NewAssistantMessage(a.Name(), fmt.Sprintf("%s turn %d", a.Name(), turn.Index)), nil
	}

	if step.Delay > 0 {
		timer := time.NewTimer(step.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return core.Message{}, ctx.Err()
		}
	}

	if step.Err != nil {
		return core.Message{}, core.NewAgentFailure(a.Name(), step.Err)
	}

	switch {
	case step.Completion != nil:
		return core.NewCompletionMessage(a.Name(), step.Completion.Summary), nil
	case step.Transfer != nil:
		msg := core.NewTransferMessage(a.Name(), step.Transfer.Target, step.Transfer.Reason)
		if step.Text != "" {
			msg.Parts = []core.Part{core.TextPart{Text: step.Text}}
		}
		return msg, nil
	default:
		return core.NewAssistantMessage(a.Name(), step.Text), nil
	}
}

func (a *ScriptedAgent) advance(turn *core.Turn) (Reply, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.turns = append(a.turns, *turn)
	if len(a.script) == 0 {
		return Reply{}, false
	}

	step := a.script[min(a.next, len(a.script)-1)]
	if a.next < len(a.script) {
		a.next++
	}
	return step, true
}
