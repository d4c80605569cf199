package openai

import (
	"testing"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessages_ToolResponsesFollowCalls(t *testing.T) {
	req := model.Request{
		Instructions: "You are TriageAgent.",
		Contents: []core.Content{
			{Role: core.RoleUser, Parts: []core.Part{core.TextPart{Text: "where is order 7?"}}},
			{Role: core.RoleAssistant, Parts: []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "c1", Name: "check_order_status", Arguments: `{"order_id":"7"}`}}}},
			{Role: core.RoleTool, Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "c1", Name: "check_order_status", Response: "shipped"}}}},
		},
	}

	responses, order := collectToolResponses(req)
	assert.Equal(t, []string{"c1"}, order)
	assert.Equal(t, "shipped", responses["c1"])

	msgs := buildMessages(req, responses, order)
	require.Len(t, msgs, 4)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	require.NotNil(t, msgs[2].OfAssistant)
	assert.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	assert.NotNil(t, msgs[3].OfTool)
}

func TestResponseText(t *testing.T) {
	assert.Equal(t, "ok", responseText(core.FunctionResponse{Response: "ok"}))
	assert.Equal(t, "42", responseText(core.FunctionResponse{Response: 42}))
	assert.Equal(t, "error: boom", responseText(core.FunctionResponse{Error: "boom"}))
}

func TestBuildParams_Tools(t *testing.T) {
	m := NewModelFromClient(nil, func(o *Options) { o.Model = "gpt-test" })
	params := m.buildParams(model.Request{Tools: []model.ToolDefinition{
		model.NewFunctionDefinition("transfer_to_agent", "Transfer", map[string]any{"type": "object"}),
	}}, nil)
	require.Len(t, params.Tools, 1)
	assert.Equal(t, "transfer_to_agent", params.Tools[0].Function.Name)
	assert.Equal(t, "gpt-test", m.Info().Name)
	assert.Equal(t, "openai", m.Info().Provider)
}
