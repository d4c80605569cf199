// Package groupchat implements the turn policy of a group discussion: a
// Manager decides who speaks next, whether a human is asked for input, when
// the discussion ends and which message becomes the result.
package groupchat

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentcrew/core"
)

// State is the per-session turn policy state. It is created fresh for every
// invocation and only touched by the session loop, so it needs no locking.
type State struct {
	Round     int // completed agent turns
	Cursor    int // index of the next member to select
	MaxRounds int
}

// Manager drives a group chat. All methods receive the session state and a
// snapshot of the conversation so far.
type Manager interface {
	// NewState returns the initial state for a session.
	NewState() *State

	// ShouldRequestUserInput reports whether a human is asked before the
	// next agent turn.
	ShouldRequestUserInput(ctx context.Context, state *State, history []core.Message) (bool, error)

	// ShouldTerminate reports whether the discussion is over.
	ShouldTerminate(ctx context.Context, state *State, history []core.Message) (bool, error)

	// SelectNext returns the name of the next speaker among members.
	SelectNext(ctx context.Context, state *State, members []string, history []core.Message) (string, error)

	// FilterResult produces the orchestration output from the final history.
	FilterResult(ctx context.Context, state *State, history []core.Message) (core.Message, error)
}

// RoundRobinManager cycles through the members in roster order and stops
// after MaxRounds agent turns. It never requests user input and returns the
// last message as the result.
type RoundRobinManager struct {
	maxRounds int
}

// NewRoundRobinManager creates a RoundRobinManager. maxRounds must be positive.
func NewRoundRobinManager(maxRounds int) (*RoundRobinManager, error) {
	if maxRounds <= 0 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidMaxRounds, maxRounds)
	}
	return &RoundRobinManager{maxRounds: maxRounds}, nil
}

// MaxRounds returns the configured number of agent turns.
func (m *RoundRobinManager) MaxRounds() int { return m.maxRounds }

// NewState implements Manager.
func (m *RoundRobinManager) NewState() *State {
	return &State{MaxRounds: m.maxRounds}
}

// ShouldRequestUserInput implements Manager.
func (m *RoundRobinManager) ShouldRequestUserInput(context.Context, *State, []core.Message) (bool, error) {
	return false, nil
}

// ShouldTerminate implements Manager.
func (m *RoundRobinManager) ShouldTerminate(_ context.Context, state *State, _ []core.Message) (bool, error) {
	return state.Round >= state.MaxRounds, nil
}

// SelectNext implements Manager.
func (m *RoundRobinManager) SelectNext(_ context.Context, state *State, members []string, _ []core.Message) (string, error) {
	if len(members) == 0 {
		return "", core.ErrEmptyRoster
	}
	next := members[state.Cursor%len(members)]
	state.Cursor = (state.Cursor + 1) % len(members)
	return next, nil
}

// FilterResult implements Manager.
func (m *RoundRobinManager) FilterResult(_ context.Context, _ *State, history []core.Message) (core.Message, error) {
	if len(history) == 0 {
		return core.Message{}, fmt.Errorf("group chat produced no messages")
	}
	return history[len(history)-1], nil
}
