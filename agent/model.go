package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/model"
	"github.com/hupe1980/agentcrew/tool"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Description        string
	Instruction        Instruction
	Tools              []tool.Tool
	MaxToolIterations  int
	ToolTimeout        time.Duration
	EnableCompletion   bool
	MaxHistoryMessages int // 0 keeps the whole history
	Logger             logging.Logger
}

// ModelAgent integrates with language models to take part in a conversation.
//
// On every turn the agent:
//   - Resolves its instruction (static or provider, rendered as template)
//   - Presents the conversation history to the model; messages of other
//     participants appear as attributed user content
//   - Advertises registered tools, a transfer_to_agent tool when the turn
//     offers handoffs and a complete_task tool when completion is enabled
//   - Executes tool calls in a bounded loop and returns the final message
//
// Transfer and completion calls are never executed. They become the
// Transfer / Completion directive of the returned message. Model and tool
// failures are returned as *core.AgentFailure.
type ModelAgent struct {
	BaseAgent
	llm                model.Model
	instruction        Instruction
	tools              map[string]tool.Tool
	toolOrder          []string
	maxToolIterations  int
	toolTimeout        time.Duration
	enableCompletion   bool
	maxHistoryMessages int
	logger             logging.Logger
}

// NewModelAgent creates a new model-based agent with sensible defaults.
//
// The agent is initialized with:
//   - A generic instruction naming the agent
//   - Up to 5 model calls per turn for tool execution
//   - 15-second timeout for tool calls
//   - Completion tool enabled
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:       NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		MaxToolIterations: 5,
		ToolTimeout:       15 * time.Second,
		EnableCompletion:  true,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ModelAgent{
		BaseAgent:          NewBaseAgent(name),
		llm:                llm,
		instruction:        opts.Instruction,
		tools:              make(map[string]tool.Tool),
		maxToolIterations:  opts.MaxToolIterations,
		toolTimeout:        opts.ToolTimeout,
		enableCompletion:   opts.EnableCompletion,
		maxHistoryMessages: opts.MaxHistoryMessages,
		logger:             logging.OrNoOp(opts.Logger),
	}
	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}
	if a.maxToolIterations <= 0 {
		a.maxToolIterations = 1
	}

	a.RegisterTools(opts.Tools...)

	return a
}

// RegisterTool adds a function tool to the agent's capability set. A tool
// with the same name replaces the previous registration.
func (a *ModelAgent) RegisterTool(t tool.Tool) {
	if _, exists := a.tools[t.Name()]; !exists {
		a.toolOrder = append(a.toolOrder, t.Name())
	}
	a.tools[t.Name()] = t
}

// RegisterTools adds multiple tools to the agent's capability set.
func (a *ModelAgent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		a.RegisterTool(t)
	}
}

// HasTool checks if a tool is registered with the agent.
func (a *ModelAgent) HasTool(name string) bool {
	_, exists := a.tools[name]
	return exists
}

// ListTools returns the names of all registered tools in registration order.
func (a *ModelAgent) ListTools() []string {
	names := make([]string, len(a.toolOrder))
	copy(names, a.toolOrder)
	return names
}

// Model returns the language model instance.
func (a *ModelAgent) Model() model.Model { return a.llm }

// Respond implements core.Agent.
func (a *ModelAgent) Respond(ctx context.Context, turn *core.Turn) (core.Message, error) {
	instructions, err := a.instruction.Resolve(ctx, turn, TemplateData(a, turn))
	if err != nil {
		return core.Message{}, core.NewAgentFailure(a.Name(), fmt.Errorf("resolve instruction: %w", err))
	}

	req := model.Request{
		Instructions: instructions,
		Contents:     a.buildContents(turn.History),
		Tools:        a.toolDefinitions(turn),
	}

	for i := 0; i < a.maxToolIterations; i++ {
		a.logger.Debug("agent.model.generate", "agent", a.Name(), "turn", turn.Index, "iteration", i+1, "contents", len(req.Contents))

		resp, err := a.llm.Generate(ctx, req)
		if err != nil {
			return core.Message{}, core.NewAgentFailure(a.Name(), fmt.Errorf("generate: %w", err))
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			return a.newReply(resp.Content.Parts), nil
		}

		if msg, ok := a.directive(resp, calls, turn); ok {
			return msg, nil
		}

		results := make([]core.Part, 0, len(calls))
		for _, call := range calls {
			results = append(results, core.FunctionResponsePart{FunctionResponse: a.executeTool(ctx, call, turn)})
		}

		if err := ctx.Err(); err != nil {
			return core.Message{}, err
		}

		req.Contents = append(req.Contents,
			core.Content{Role: core.RoleAssistant, Parts: resp.Content.Parts},
			core.Content{Role: core.RoleTool, Parts: results},
		)
	}

	return core.Message{}, core.NewAgentFailure(a.Name(), fmt.Errorf("exceeded %d model calls without a final answer", a.maxToolIterations))
}

// buildContents converts the history into model contents. Own replies stay
// assistant content; everything else becomes user content attributed to its
// author so the model can tell participants apart.
func (a *ModelAgent) buildContents(history []core.Message) []core.Content {
	if a.maxHistoryMessages > 0 && len(history) > a.maxHistoryMessages {
		history = history[len(history)-a.maxHistoryMessages:]
	}

	contents := make([]core.Content, 0, len(history))
	for _, m := range history {
		text := m.Text()
		if text == "" && m.IsTransfer() {
			text = fmt.Sprintf("Transferring to %s.", m.Transfer.Target)
		}
		if text == "" {
			continue
		}

		switch {
		case m.Author == a.Name():
			contents = append(contents, core.Content{Role: core.RoleAssistant, Parts: []core.Part{core.TextPart{Text: text}}})
		case m.Role == core.RoleSystem:
			contents = append(contents, core.Content{Role: core.RoleSystem, Parts: []core.Part{core.TextPart{Text: text}}})
		case m.Author == core.UserAuthor:
			contents = append(contents, core.Content{Role: core.RoleUser, Parts: []core.Part{core.TextPart{Text: text}}})
		default:
			contents = append(contents, core.Content{Role: core.RoleUser, Parts: []core.Part{core.TextPart{Text: fmt.Sprintf("[%s] %s", m.Author, text)}}})
		}
	}

	return contents
}

func (a *ModelAgent) toolDefinitions(turn *core.Turn) []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(a.toolOrder)+2)
	for _, name := range a.toolOrder {
		t := a.tools[name]
		defs = append(defs, model.NewFunctionDefinition(t.Name(), t.Description(), t.Parameters()))
	}
	if len(turn.Handoffs) > 0 {
		defs = append(defs, model.NewFunctionDefinition(tool.TransferToolName, tool.TransferDescription(turn.Handoffs), tool.TransferParameters(turn.Handoffs)))
	}
	if a.enableCompletion {
		defs = append(defs, model.NewFunctionDefinition(tool.CompleteToolName, tool.CompleteDescription, tool.CompleteParameters()))
	}
	return defs
}

// directive converts the first valid transfer or completion call of resp
// into the reply message. ok is false when resp carries none.
func (a *ModelAgent) directive(resp model.Response, calls []core.FunctionCall, turn *core.Turn) (core.Message, bool) {
	for _, call := range calls {
		if !a.isDirective(call.Name) {
			continue
		}
		if msg, err := a.parseDirective(resp, call, turn); err == nil {
			return msg, true
		}
	}
	return core.Message{}, false
}

func (a *ModelAgent) isDirective(name string) bool {
	return name == tool.TransferToolName || (name == tool.CompleteToolName && a.enableCompletion)
}

// parseDirective validates the arguments of a directive call against its
// schema, including the allowed transfer targets of turn.
func (a *ModelAgent) parseDirective(resp model.Response, call core.FunctionCall, turn *core.Turn) (core.Message, error) {
	args, err := decodeArguments(call.Arguments)
	if err != nil {
		return core.Message{}, tool.NewToolError(call.Name, err.Error(), tool.CodeBadArgs)
	}

	msg := a.newReply(resp.Content.Parts)

	if call.Name == tool.TransferToolName {
		transfer, err := tool.ParseTransfer(args, turn.Handoffs)
		if err != nil {
			return core.Message{}, err
		}
		msg.Transfer = &transfer
		return msg, nil
	}

	completion, err := tool.ParseCompletion(args)
	if err != nil {
		return core.Message{}, err
	}
	if msg.Text() == "" {
		msg.Parts = []core.Part{core.TextPart{Text: completion.Summary}}
	}
	msg.Completion = &completion
	return msg, nil
}

// executeTool runs a single call. Failures, including directive calls with
// rejected arguments, are reported back to the model as an error response
// rather than failing the turn.
func (a *ModelAgent) executeTool(ctx context.Context, call core.FunctionCall, turn *core.Turn) core.FunctionResponse {
	resp := core.FunctionResponse{ID: call.ID, Name: call.Name}

	if a.isDirective(call.Name) {
		if _, err := a.parseDirective(model.Response{}, call, turn); err != nil {
			resp.Error = err.Error()
		}
		return resp
	}

	t, exists := a.tools[call.Name]
	if !exists {
		resp.Error = tool.NewToolError(call.Name, "tool not found", tool.CodeNotFound).Error()
		return resp
	}

	args, err := decodeArguments(call.Arguments)
	if err != nil {
		resp.Error = tool.NewToolError(call.Name, err.Error(), tool.CodeBadArgs).Error()
		return resp
	}

	if a.toolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.toolTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := t.Call(ctx, args)
	a.logger.Debug("agent.tool.call", "agent", a.Name(), "tool", call.Name, "duration", time.Since(start), "error", err)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Response = result

	return resp
}

// newReply builds the assistant message for the textual parts of a response.
func (a *ModelAgent) newReply(parts []core.Part) core.Message {
	msg := core.NewAssistantMessage(a.Name(), "")
	msg.Parts = nil
	for _, p := range parts {
		if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
			msg.Parts = append(msg.Parts, tp)
		}
	}
	return msg
}

func decodeArguments(raw string) (map[string]any, error) {
	args := make(map[string]any)
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}
	if args == nil {
		args = make(map[string]any)
	}
	return args, nil
}
