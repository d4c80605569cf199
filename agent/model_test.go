package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/model"
	"github.com/hupe1980/agentcrew/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func toolNames(defs []model.ToolDefinition) []string {
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Function.Name)
	}
	return names
}

func TestModelAgent_PlainReply(t *testing.T) {
	llm := model.NewMockModel("mock")
	a := NewModelAgent("Writer", llm, func(o *ModelAgentOptions) {
		o.Instruction = NewInstructionFromText("You are {{.agent}}.")
		o.Description = "Writes copy"
	})

	msg, err := a.Respond(context.Background(), turnFor("Writer", 1, core.NewUserMessage("slogan for an EV")))
	require.NoError(t, err)
	assert.Equal(t, "Writer", msg.Author)
	assert.Equal(t, core.RoleAssistant, msg.Role)
	assert.Equal(t, "Mock response to: slogan for an EV", msg.Text())
	assert.False(t, msg.IsTransfer())
	assert.Equal(t, "Writes copy", a.Description())

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "You are Writer.", reqs[0].Instructions)
	assert.Equal(t, []string{tool.CompleteToolName}, toolNames(reqs[0].Tools))
}

func TestModelAgent_AttributesOtherParticipants(t *testing.T) {
	llm := model.NewMockModel("mock")
	a := NewModelAgent("Reviewer", llm)

	history := []core.Message{
		core.NewUserMessage("task"),
		core.NewAssistantMessage("Writer", "draft"),
		core.NewAssistantMessage("Reviewer", "too long"),
		core.NewTransferMessage("Writer", "Reviewer", ""),
	}
	_, err := a.Respond(context.Background(), turnFor("Reviewer", 3, history...))
	require.NoError(t, err)

	contents := llm.Requests()[0].Contents
	require.Len(t, contents, 4)
	assert.Equal(t, core.RoleUser, contents[0].Role)
	assert.Equal(t, "task", contents[0].Text())
	assert.Equal(t, core.RoleUser, contents[1].Role)
	assert.Equal(t, "[Writer] draft", contents[1].Text())
	assert.Equal(t, core.RoleAssistant, contents[2].Role)
	assert.Equal(t, "[Writer] Transferring to Reviewer.", contents[3].Text())
}

func TestModelAgent_MaxHistoryMessages(t *testing.T) {
	llm := model.NewMockModel("mock")
	a := NewModelAgent("Writer", llm, func(o *ModelAgentOptions) { o.MaxHistoryMessages = 1 })

	_, err := a.Respond(context.Background(), turnFor("Writer", 2, core.NewUserMessage("old"), core.NewUserMessage("new")))
	require.NoError(t, err)

	contents := llm.Requests()[0].Contents
	require.Len(t, contents, 1)
	assert.Equal(t, "new", contents[0].Text())
}

func TestModelAgent_Transfer(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.EnqueueToolCall("c1", tool.TransferToolName, map[string]any{"agent": "Refund", "reason": "wants money back"})
	a := NewModelAgent("Triage", llm)

	turn := turnFor("Triage", 1, core.NewUserMessage("refund order 7"))
	turn.Handoffs = []core.HandoffOption{{Target: "Refund", Rationale: "refunds"}}

	msg, err := a.Respond(context.Background(), turn)
	require.NoError(t, err)
	require.True(t, msg.IsTransfer())
	assert.Equal(t, "Refund", msg.Transfer.Target)
	assert.Equal(t, "wants money back", msg.Transfer.Reason)

	assert.Equal(t, []string{tool.TransferToolName, tool.CompleteToolName}, toolNames(llm.Requests()[0].Tools))
}

func TestModelAgent_Completion(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.EnqueueToolCall("c1", tool.CompleteToolName, map[string]any{"summary": "refund issued"})
	a := NewModelAgent("Refund", llm)

	msg, err := a.Respond(context.Background(), turnFor("Refund", 2, core.NewUserMessage("thanks")))
	require.NoError(t, err)
	require.True(t, msg.IsCompletion())
	assert.Equal(t, "refund issued", msg.Completion.Summary)
	assert.Equal(t, "refund issued", msg.Text())
}

func TestModelAgent_ToolLoop(t *testing.T) {
	refund := NewMockTool("process_refund")
	refund.On("Call", mock.Anything, map[string]any{"order_id": "7"}).Return("refund processed", nil).Once()

	llm := model.NewMockModel("mock")
	llm.EnqueueToolCall("c1", "process_refund", map[string]any{"order_id": "7"})
	llm.Enqueue(model.Response{Content: core.Content{Role: core.RoleAssistant, Parts: []core.Part{core.TextPart{Text: "Your refund is on its way."}}}})

	a := NewModelAgent("Refund", llm, func(o *ModelAgentOptions) {
		o.Tools = []tool.Tool{refund}
		o.EnableCompletion = false
	})
	assert.True(t, a.HasTool("process_refund"))
	assert.Equal(t, []string{"process_refund"}, a.ListTools())

	msg, err := a.Respond(context.Background(), turnFor("Refund", 1, core.NewUserMessage("refund order 7")))
	require.NoError(t, err)
	assert.Equal(t, "Your refund is on its way.", msg.Text())
	refund.AssertExpectations(t)

	reqs := llm.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, []string{"process_refund"}, toolNames(reqs[0].Tools))

	last := reqs[1].Contents[len(reqs[1].Contents)-1]
	assert.Equal(t, core.RoleTool, last.Role)
	require.Len(t, last.Parts, 1)
	fr := last.Parts[0].(core.FunctionResponsePart).FunctionResponse
	assert.Equal(t, "c1", fr.ID)
	assert.Equal(t, "refund processed", fr.Response)
}

func TestModelAgent_UnknownToolIsReportedToModel(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.EnqueueToolCall("c1", "missing", nil)
	llm.Enqueue(model.Response{Content: core.Content{Role: core.RoleAssistant, Parts: []core.Part{core.TextPart{Text: "sorry"}}}})
	a := NewModelAgent("Writer", llm)

	msg, err := a.Respond(context.Background(), turnFor("Writer", 1, core.NewUserMessage("x")))
	require.NoError(t, err)
	assert.Equal(t, "sorry", msg.Text())

	last := llm.Requests()[1].Contents
	fr := last[len(last)-1].Parts[0].(core.FunctionResponsePart).FunctionResponse
	assert.Contains(t, fr.Error, tool.CodeNotFound)
}

func TestModelAgent_Failures(t *testing.T) {
	t.Run("model error", func(t *testing.T) {
		boom := errors.New("rate limited")
		llm := model.NewMockModel("mock")
		llm.FailWith(boom)
		a := NewModelAgent("Writer", llm)

		_, err := a.Respond(context.Background(), turnFor("Writer", 1, core.NewUserMessage("x")))
		var af *core.AgentFailure
		require.ErrorAs(t, err, &af)
		assert.Equal(t, "Writer", af.Agent)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("tool iterations exhausted", func(t *testing.T) {
		noop := NewMockTool("lookup")
		noop.On("Call", mock.Anything, mock.Anything).Return("again", nil)

		llm := model.NewMockModel("mock")
		llm.EnqueueToolCall("c1", "lookup", nil)
		llm.EnqueueToolCall("c2", "lookup", nil)
		a := NewModelAgent("Writer", llm, func(o *ModelAgentOptions) {
			o.Tools = []tool.Tool{noop}
			o.MaxToolIterations = 2
		})

		_, err := a.Respond(context.Background(), turnFor("Writer", 1, core.NewUserMessage("x")))
		assert.ErrorIs(t, err, core.ErrAgentFailure)
		noop.AssertNumberOfCalls(t, "Call", 2)
	})

	t.Run("rejected transfer exhausts iterations", func(t *testing.T) {
		llm := model.NewMockModel("mock")
		llm.EnqueueToolCall("c1", tool.TransferToolName, map[string]any{"reason": "no target"})
		a := NewModelAgent("Triage", llm, func(o *ModelAgentOptions) { o.MaxToolIterations = 1 })

		turn := turnFor("Triage", 1, core.NewUserMessage("x"))
		turn.Handoffs = []core.HandoffOption{{Target: "Refund"}}

		_, err := a.Respond(context.Background(), turn)
		assert.ErrorIs(t, err, core.ErrAgentFailure)
	})
}

func TestModelAgent_InvalidDirectiveArgumentsAreReportedToModel(t *testing.T) {
	lastResponse := func(req model.Request) core.FunctionResponse {
		last := req.Contents[len(req.Contents)-1]
		return last.Parts[0].(core.FunctionResponsePart).FunctionResponse
	}

	t.Run("target outside the handoff options", func(t *testing.T) {
		llm := model.NewMockModel("mock")
		llm.EnqueueToolCall("c1", tool.TransferToolName, map[string]any{"agent": "OrderStatus"})
		llm.EnqueueToolCall("c2", tool.TransferToolName, map[string]any{"agent": "Refund", "reason": "refund related"})
		a := NewModelAgent("Triage", llm)

		turn := turnFor("Triage", 1, core.NewUserMessage("refund order 7"))
		turn.Handoffs = []core.HandoffOption{{Target: "Refund"}, {Target: "OrderReturn"}}

		msg, err := a.Respond(context.Background(), turn)
		require.NoError(t, err)
		require.True(t, msg.IsTransfer())
		assert.Equal(t, "Refund", msg.Transfer.Target)

		reqs := llm.Requests()
		require.Len(t, reqs, 2)
		fr := lastResponse(reqs[1])
		assert.Equal(t, "c1", fr.ID)
		assert.Contains(t, fr.Error, tool.CodeBadArgs)
		assert.Contains(t, fr.Error, "must be one of [Refund, OrderReturn]")
	})

	t.Run("completion without summary", func(t *testing.T) {
		llm := model.NewMockModel("mock")
		llm.EnqueueToolCall("c1", tool.CompleteToolName, map[string]any{"summary": 42})
		llm.EnqueueToolCall("c2", tool.CompleteToolName, map[string]any{"summary": "refund issued"})
		a := NewModelAgent("Refund", llm)

		msg, err := a.Respond(context.Background(), turnFor("Refund", 1, core.NewUserMessage("thanks")))
		require.NoError(t, err)
		require.True(t, msg.IsCompletion())
		assert.Equal(t, "refund issued", msg.Completion.Summary)

		fr := lastResponse(llm.Requests()[1])
		assert.Contains(t, fr.Error, `argument "summary"`)
	})
}
