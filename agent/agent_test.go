package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/agentcrew/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTool is a testify mock implementing tool.Tool.
type MockTool struct {
	mock.Mock
	name string
}

func NewMockTool(name string) *MockTool { return &MockTool{name: name} }

func (m *MockTool) Name() string        { return m.name }
func (m *MockTool) Description() string { return "mock tool " + m.name }

func (m *MockTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"order_id": map[string]any{"type": "string"}},
	}
}

func (m *MockTool) Call(ctx context.Context, args map[string]any) (any, error) {
	a := m.Called(ctx, args)
	return a.Get(0), a.Error(1)
}

func turnFor(name string, index int, history ...core.Message) *core.Turn {
	return &core.Turn{SessionID: "s1", Index: index, Agent: name, History: history}
}

func TestBaseAgent(t *testing.T) {
	b := NewBaseAgent("Writer")
	assert.Equal(t, "Writer", b.Name())
	assert.Equal(t, "Agent Writer", b.Description())

	b.SetDescription("Drafts copy")
	assert.Equal(t, "Drafts copy", b.Description())
}

func TestScriptedAgent(t *testing.T) {
	t.Run("replays last step when exhausted", func(t *testing.T) {
		a := NewScriptedAgent("Writer", "draft 1", "draft 2")
		ctx := context.Background()

		var texts []string
		for i := 1; i <= 3; i++ {
			msg, err := a.Respond(ctx, turnFor("Writer", i))
			require.NoError(t, err)
			assert.Equal(t, "Writer", msg.Author)
			assert.Equal(t, core.RoleAssistant, msg.Role)
			texts = append(texts, msg.Text())
		}

		assert.Equal(t, []string{"draft 1", "draft 2", "draft 2"}, texts)
		assert.Equal(t, 3, a.Calls())
	})

	t.Run("empty script names the turn", func(t *testing.T) {
		a := NewScriptedAgent("Reviewer")
		msg, err := a.Respond(context.Background(), turnFor("Reviewer", 4))
		require.NoError(t, err)
		assert.Equal(t, "Reviewer turn 4", msg.Text())
	})

	t.Run("directives", func(t *testing.T) {
		a := NewScriptedAgent("Triage").ThenTransfer("Refund", "refund request").ThenComplete("done")

		msg, err := a.Respond(context.Background(), turnFor("Triage", 1))
		require.NoError(t, err)
		require.True(t, msg.IsTransfer())
		assert.Equal(t, "Refund", msg.Transfer.Target)
		assert.Equal(t, "refund request", msg.Transfer.Reason)

		msg, err = a.Respond(context.Background(), turnFor("Triage", 2))
		require.NoError(t, err)
		require.True(t, msg.IsCompletion())
		assert.Equal(t, "done", msg.Completion.Summary)
	})

	t.Run("failure is an agent failure", func(t *testing.T) {
		boom := errors.New("boom")
		a := NewScriptedAgent("Writer").ThenFail(boom)

		_, err := a.Respond(context.Background(), turnFor("Writer", 1))
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrAgentFailure)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("delay honours cancellation", func(t *testing.T) {
		a := NewScriptedAgent("Slow").Then(Reply{Text: "late", Delay: time.Hour})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := a.Respond(ctx, turnFor("Slow", 1))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("records turns", func(t *testing.T) {
		a := NewScriptedAgent("Writer", "x")
		seed := core.NewUserMessage("task")
		_, err := a.Respond(context.Background(), turnFor("Writer", 1, seed))
		require.NoError(t, err)

		turns := a.Turns()
		require.Len(t, turns, 1)
		require.Len(t, turns[0].History, 1)
		assert.Equal(t, "task", turns[0].History[0].Text())
	})
}

func TestFuncAgent(t *testing.T) {
	t.Run("fills author and role", func(t *testing.T) {
		a := NewFuncAgent("Echo", "echoes the last message", func(_ context.Context, turn *core.Turn) (core.Message, error) {
			last := turn.History[len(turn.History)-1]
			return core.Message{Parts: []core.Part{core.TextPart{Text: last.Text()}}}, nil
		})

		msg, err := a.Respond(context.Background(), turnFor("Echo", 1, core.NewUserMessage("hi")))
		require.NoError(t, err)
		assert.Equal(t, "Echo", msg.Author)
		assert.Equal(t, core.RoleAssistant, msg.Role)
		assert.Equal(t, "hi", msg.Text())
		assert.Equal(t, "echoes the last message", a.Description())
	})

	t.Run("wraps errors", func(t *testing.T) {
		a := NewFuncAgent("Broken", "", func(context.Context, *core.Turn) (core.Message, error) {
			return core.Message{}, errors.New("nope")
		})

		_, err := a.Respond(context.Background(), turnFor("Broken", 1))
		var af *core.AgentFailure
		require.ErrorAs(t, err, &af)
		assert.Equal(t, "Broken", af.Agent)
	})

	t.Run("passes context errors through", func(t *testing.T) {
		a := NewFuncAgent("Blocked", "", func(ctx context.Context, _ *core.Turn) (core.Message, error) {
			<-ctx.Done()
			return core.Message{}, ctx.Err()
		})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := a.Respond(ctx, turnFor("Blocked", 1))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.NotErrorIs(t, err, core.ErrAgentFailure)
	})
}
