package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentcrew/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstruction(t *testing.T) {
	turn := &core.Turn{
		SessionID: "s1",
		Index:     2,
		Agent:     "Triage",
		Handoffs: []core.HandoffOption{
			{Target: "Refund", Rationale: "refunds"},
			{Target: "OrderStatus", Rationale: "status"},
		},
	}
	data := TemplateData(NewScriptedAgent("Triage"), turn)

	t.Run("static text", func(t *testing.T) {
		i := NewInstructionFromText("Handle customer requests.")
		assert.True(t, i.IsStatic())

		text, err := i.Resolve(context.Background(), turn, data)
		require.NoError(t, err)
		assert.Equal(t, "Handle customer requests.", text)
	})

	t.Run("template variables", func(t *testing.T) {
		i := NewInstructionFromText("You are {{.agent}} (turn {{.turn}}). Transfer to {{join \", \" .handoffs}}.")

		text, err := i.Resolve(context.Background(), turn, data)
		require.NoError(t, err)
		assert.Equal(t, "You are Triage (turn 2). Transfer to Refund, OrderStatus.", text)
	})

	t.Run("provider", func(t *testing.T) {
		i := NewInstructionFromFunc(func(_ context.Context, turn *core.Turn) (string, error) {
			return "session {{.session_id}} via " + turn.Agent, nil
		})
		assert.False(t, i.IsStatic())

		text, err := i.Resolve(context.Background(), turn, data)
		require.NoError(t, err)
		assert.Equal(t, "session s1 via Triage", text)
	})

	t.Run("provider error", func(t *testing.T) {
		i := NewInstructionFromProvider(Func(func(context.Context, *core.Turn) (string, error) {
			return "", errors.New("unavailable")
		}))

		_, err := i.Resolve(context.Background(), turn, data)
		assert.EqualError(t, err, "unavailable")
	})
}
