package model

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentcrew/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userContent(text string) core.Content {
	return core.Content{Role: core.RoleUser, Parts: []core.Part{core.TextPart{Text: text}}}
}

func TestMockModel_CannedAndEcho(t *testing.T) {
	m := NewMockModel("mock-1")
	m.AddResponse("hello", "hi there")

	resp, err := m.Generate(context.Background(), Request{Contents: []core.Content{userContent("hello")}})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Content.Text())
	assert.Equal(t, "stop", resp.FinishReason)

	resp, err = m.Generate(context.Background(), Request{Contents: []core.Content{userContent("other")}})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: other", resp.Content.Text())
	assert.Len(t, m.Requests(), 2)
}

func TestMockModel_QueueFirst(t *testing.T) {
	m := NewMockModel("mock-1")
	m.EnqueueToolCall("call-1", "transfer_to_agent", map[string]any{"agent": "Refund"})

	resp, err := m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	calls := resp.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "transfer_to_agent", calls[0].Name)
	assert.JSONEq(t, `{"agent":"Refund"}`, calls[0].Arguments)

	_, err = m.Generate(context.Background(), Request{})
	assert.Error(t, err, "empty request after queue is drained")
}

func TestMockModel_FailuresAndCancellation(t *testing.T) {
	m := NewMockModel("mock-1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Generate(ctx, Request{Contents: []core.Content{userContent("x")}})
	assert.ErrorIs(t, err, context.Canceled)

	boom := errors.New("unavailable")
	m.FailWith(boom)
	_, err = m.Generate(context.Background(), Request{Contents: []core.Content{userContent("x")}})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "mock", m.Info().Provider)
}
