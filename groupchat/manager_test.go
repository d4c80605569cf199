package groupchat

import (
	"context"
	"testing"

	"github.com/hupe1980/agentcrew/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoundRobinManager(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := NewRoundRobinManager(n)
		assert.ErrorIs(t, err, core.ErrInvalidMaxRounds)
	}

	m, err := NewRoundRobinManager(5)
	require.NoError(t, err)
	assert.Equal(t, 5, m.MaxRounds())

	state := m.NewState()
	assert.Equal(t, &State{MaxRounds: 5}, state)
	assert.NotSame(t, state, m.NewState())
}

func TestRoundRobinManager_Cycle(t *testing.T) {
	ctx := context.Background()
	m, err := NewRoundRobinManager(5)
	require.NoError(t, err)
	state := m.NewState()
	members := []string{"Writer", "Reviewer"}

	var speakers []string
	for {
		done, err := m.ShouldTerminate(ctx, state, nil)
		require.NoError(t, err)
		if done {
			break
		}

		ask, err := m.ShouldRequestUserInput(ctx, state, nil)
		require.NoError(t, err)
		assert.False(t, ask)

		next, err := m.SelectNext(ctx, state, members, nil)
		require.NoError(t, err)
		speakers = append(speakers, next)
		state.Round++
	}

	assert.Equal(t, []string{"Writer", "Reviewer", "Writer", "Reviewer", "Writer"}, speakers)
}

func TestRoundRobinManager_SingleMember(t *testing.T) {
	m, err := NewRoundRobinManager(3)
	require.NoError(t, err)
	state := m.NewState()

	for i := 0; i < 3; i++ {
		next, err := m.SelectNext(context.Background(), state, []string{"Solo"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Solo", next)
	}
}

func TestRoundRobinManager_SelectNextEmpty(t *testing.T) {
	m, err := NewRoundRobinManager(1)
	require.NoError(t, err)

	_, err = m.SelectNext(context.Background(), m.NewState(), nil, nil)
	assert.ErrorIs(t, err, core.ErrEmptyRoster)
}

func TestRoundRobinManager_FilterResult(t *testing.T) {
	m, err := NewRoundRobinManager(1)
	require.NoError(t, err)

	history := []core.Message{core.NewUserMessage("task"), core.NewAssistantMessage("Writer", "Drive the future.")}
	res, err := m.FilterResult(context.Background(), m.NewState(), history)
	require.NoError(t, err)
	assert.Equal(t, "Writer", res.Author)
	assert.Equal(t, "Drive the future.", res.Text())

	_, err = m.FilterResult(context.Background(), m.NewState(), nil)
	assert.Error(t, err)
}
