package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/handoff"
	"github.com/hupe1980/agentcrew/internal/telemetry"
	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/runtime"
)

// Handoff routes a conversation between members along a handoff graph.
//
// Each session starts with the entry agent answering the task. After every
// agent turn:
//   - a Completion directive ends the session with its summary as output
//   - an accepted Transfer makes the target the active agent, which answers
//     next
//   - a rejected Transfer is reported to the observer, a feedback message
//     listing the allowed targets is appended and the same agent is asked
//     again; MaxRejections consecutive rejections fail the session
//   - a plain reply hands the floor to the human input provider, after
//     which the active agent continues
type Handoff struct {
	members []core.Agent
	names   []string
	graph   *handoff.Graph
	entry   string
	opts    Options
}

// NewHandoff validates the roster, builds the handoff graph and resolves the
// entry agent. Errors: core.ErrEmptyRoster, *core.DuplicateEdgeError,
// *core.UnknownAgentError.
func NewHandoff(members []core.Agent, handoffs *handoff.Handoffs, optFns ...Option) (*Handoff, error) {
	names, err := core.ValidateRoster(members)
	if err != nil {
		return nil, err
	}
	if handoffs == nil {
		handoffs = handoff.New()
	}

	graph, err := handoffs.Build(names)
	if err != nil {
		return nil, err
	}

	opts := buildOptions(optFns)

	entry := opts.EntryAgent
	if entry == "" {
		entry = names[0]
	}
	if !graph.Has(entry) {
		return nil, &core.UnknownAgentError{Name: entry, Context: "entry agent"}
	}

	return &Handoff{
		members: append([]core.Agent(nil), members...),
		names:   names,
		graph:   graph,
		entry:   entry,
		opts:    opts,
	}, nil
}

// Graph returns the validated handoff graph.
func (h *Handoff) Graph() *handoff.Graph { return h.graph }

// EntryAgent returns the initially active agent.
func (h *Handoff) EntryAgent() string { return h.entry }

// Invoke starts a handoff session seeded with task on rt.
func (h *Handoff) Invoke(ctx context.Context, task string, rt *runtime.Runtime) (*runtime.Result, error) {
	router, err := handoff.NewRouter(h.graph, h.entry)
	if err != nil {
		return nil, err
	}

	policy := &handoffPolicy{
		router:        router,
		maxTurns:      h.opts.MaxTurns,
		maxRejections: h.opts.MaxRejections,
		logger:        logging.Events(h.opts.Logger),
		metrics:       telemetry.Default(),
	}

	return rt.Invoke(ctx, policy, h.members, core.NewUserMessage(task), h.opts.invokeOptions)
}

// handoffPolicy is the per-session routing state machine.
type handoffPolicy struct {
	router        *handoff.Router
	maxTurns      int
	maxRejections int
	logger        logging.EventLogger
	metrics       *telemetry.Metrics

	needInput  bool
	rejections int
	output     *core.Message
}

func (p *handoffPolicy) Name() string { return "handoff" }

// Active returns the currently active agent.
func (p *handoffPolicy) Active() string { return p.router.Active() }

func (p *handoffPolicy) Next(_ context.Context, s *runtime.Session) (runtime.Step, error) {
	if p.output != nil {
		return runtime.DoneStep(*p.output), nil
	}
	if p.maxTurns > 0 && s.Turns() >= p.maxTurns {
		return runtime.DoneStep(lastMessage(s)), nil
	}
	if p.needInput {
		return runtime.InputStep(), nil
	}
	return runtime.AgentStep(p.router.Active(), p.router.Options()...), nil
}

func (p *handoffPolicy) Accept(ctx context.Context, s *runtime.Session, author string, msg core.Message) error {
	if author == core.UserAuthor {
		p.needInput = false
		return nil
	}

	switch {
	case msg.IsCompletion():
		out := msg
		if summary := msg.Completion.Summary; summary != "" {
			out.Parts = []core.Part{core.TextPart{Text: summary}}
		}
		p.output = &out
		p.rejections = 0
		return nil

	case msg.IsTransfer():
		err := p.router.Transfer(*msg.Transfer)
		p.logger.LogHandoff(author, msg.Transfer.Target, err == nil, msg.Transfer.Reason)
		p.metrics.Handoff(ctx, author, msg.Transfer.Target, err == nil)
		if err == nil {
			p.rejections = 0
			return nil
		}

		p.rejections++
		if p.rejections >= p.maxRejections {
			return err
		}
		s.ReportError(err)

		_, aerr := s.Append(rejectionFeedback(err))
		return aerr

	default:
		p.rejections = 0
		p.needInput = true
		return nil
	}
}

func rejectionFeedback(err error) core.Message {
	var ih *core.InvalidHandoffError
	if !errors.As(err, &ih) {
		return core.NewMessage(core.SystemAuthor, core.RoleTool, fmt.Sprintf("Transfer rejected: %v", err))
	}

	allowed := "none"
	if len(ih.Allowed) > 0 {
		allowed = strings.Join(ih.Allowed, ", ")
	}

	return core.NewMessage(core.SystemAuthor, core.RoleTool,
		fmt.Sprintf("Transfer from %s to %s was rejected. Allowed targets: %s. Answer the user or transfer to an allowed agent.", ih.Source, ih.Target, allowed))
}
