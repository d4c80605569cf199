package agent

import (
	"context"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/internal/util"
)

// Provider supplies dynamic instruction text at runtime.
// Implementations can derive instructions from the turn, environment, etc.
type Provider interface {
	Instruction(ctx context.Context, turn *core.Turn) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(ctx context.Context, turn *core.Turn) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(ctx context.Context, turn *core.Turn) (string, error) { return f(ctx, turn) }

// Instruction represents either a static instruction string or a dynamic provider.
// The resolved text is rendered as a template with the turn variables (see
// TemplateData).
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(ctx context.Context, turn *core.Turn) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the rendered instruction text, invoking the provider if needed.
func (i Instruction) Resolve(ctx context.Context, turn *core.Turn, data map[string]any) (string, error) {
	text := i.text
	if i.provider != nil {
		var err error
		if text, err = i.provider.Instruction(ctx, turn); err != nil {
			return "", err
		}
	}
	return util.RenderTemplate(text, data)
}

// TemplateData returns the variables available to instruction templates:
//
//	{{.agent}}       name of the responding agent
//	{{.description}} its description
//	{{.session_id}}  id of the running session
//	{{.turn}}        1-based turn index
//	{{.handoffs}}    allowed transfer targets ([]string)
func TemplateData(a core.Agent, turn *core.Turn) map[string]any {
	targets := make([]string, 0, len(turn.Handoffs))
	for _, h := range turn.Handoffs {
		targets = append(targets, h.Target)
	}
	return map[string]any{
		"agent":       a.Name(),
		"description": a.Description(),
		"session_id":  turn.SessionID,
		"turn":        turn.Index,
		"handoffs":    targets,
	}
}
