package orchestration

import (
	"context"
	"errors"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/groupchat"
	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/runtime"
)

// GroupChat runs a discussion among members under a groupchat.Manager.
type GroupChat struct {
	members []core.Agent
	names   []string
	manager groupchat.Manager
	opts    Options
}

// NewGroupChat validates the roster and returns a GroupChat. An empty roster
// yields core.ErrEmptyRoster.
func NewGroupChat(members []core.Agent, manager groupchat.Manager, optFns ...Option) (*GroupChat, error) {
	names, err := core.ValidateRoster(members)
	if err != nil {
		return nil, err
	}
	if manager == nil {
		return nil, errors.New("group chat requires a manager")
	}

	return &GroupChat{
		members: append([]core.Agent(nil), members...),
		names:   names,
		manager: manager,
		opts:    buildOptions(optFns),
	}, nil
}

// Members returns the roster names in order.
func (g *GroupChat) Members() []string { return append([]string(nil), g.names...) }

// Invoke starts a group chat seeded with task on rt.
func (g *GroupChat) Invoke(ctx context.Context, task string, rt *runtime.Runtime) (*runtime.Result, error) {
	policy := &groupChatPolicy{
		manager:  g.manager,
		state:    g.manager.NewState(),
		names:    g.names,
		maxTurns: g.opts.MaxTurns,
		logger:   logging.Events(g.opts.Logger),
	}
	return rt.Invoke(ctx, policy, g.members, core.NewUserMessage(task), g.opts.invokeOptions)
}

// groupChatPolicy adapts a Manager to runtime.Policy for one session.
type groupChatPolicy struct {
	manager   groupchat.Manager
	state     *groupchat.State
	names     []string
	maxTurns  int
	logger    logging.EventLogger
	tookInput bool
}

func (p *groupChatPolicy) Name() string { return "group_chat" }

func (p *groupChatPolicy) Next(ctx context.Context, s *runtime.Session) (runtime.Step, error) {
	history := s.History()

	done, err := p.manager.ShouldTerminate(ctx, p.state, history)
	if err != nil {
		return runtime.Step{}, err
	}
	if done {
		out, err := p.manager.FilterResult(ctx, p.state, history)
		if err != nil {
			return runtime.Step{}, err
		}
		p.logger.Info("Group chat finished", "session_id", s.ID(), "rounds", p.state.Round, "reason", "manager")
		return runtime.DoneStep(out), nil
	}

	if p.maxTurns > 0 && s.Turns() >= p.maxTurns {
		p.logger.Info("Group chat finished", "session_id", s.ID(), "rounds", p.state.Round, "reason", "max_turns")
		return runtime.DoneStep(lastMessage(s)), nil
	}

	if !p.tookInput {
		ask, err := p.manager.ShouldRequestUserInput(ctx, p.state, history)
		if err != nil {
			return runtime.Step{}, err
		}
		if ask {
			p.logger.Debug("Requesting user input", "session_id", s.ID(), "round", p.state.Round)
			return runtime.InputStep(), nil
		}
	}

	next, err := p.manager.SelectNext(ctx, p.state, p.names, history)
	if err != nil {
		return runtime.Step{}, err
	}
	p.logger.Debug("Speaker selected", "session_id", s.ID(), "agent", next, "round", p.state.Round+1)

	return runtime.AgentStep(next), nil
}

func (p *groupChatPolicy) Accept(_ context.Context, _ *runtime.Session, author string, _ core.Message) error {
	if author == core.UserAuthor {
		p.tookInput = true
		return nil
	}
	p.tookInput = false
	p.state.Round++
	return nil
}
