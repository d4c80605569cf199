package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// Session is one running orchestration: its conversation log, its actors and
// its result. Policies receive the session in Next and Accept.
type Session struct {
	id      string
	runtime *Runtime
	policy  Policy
	input   core.InputProvider

	ctx    context.Context
	cancel context.CancelFunc
	span   trace.Span

	log        *core.ConversationLog
	members    []string
	actors     map[string]*actor
	dispatcher *dispatcher
	result     *Result

	mu     sync.Mutex // serializes Append / ReportError with cancellation
	closed bool

	turns   int // agent turns delivered
	started time.Time
}

func newSession(parent context.Context, r *Runtime, policy Policy, roster []core.Agent, opts InvokeOptions) *Session {
	id := core.NewID()
	ctx, span := telemetry.StartSessionSpan(parent, id, policy.Name())
	ctx, cancel := context.WithCancel(ctx)

	s := &Session{
		id:         id,
		span:       span,
		runtime:    r,
		policy:     policy,
		input:      opts.InputProvider,
		ctx:        ctx,
		cancel:     cancel,
		log:        core.NewConversationLog(),
		actors:     make(map[string]*actor, len(roster)),
		dispatcher: newDispatcher(opts.Observer, r.config.ObserverQueueSize, r.config.ObserverTimeout, r.logger),
		started:    time.Now(),
	}

	for _, a := range roster {
		s.members = append(s.members, a.Name())
		s.actors[a.Name()] = newActor(a, r.config.MailboxSize)
	}

	s.result = newResult(s)

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Members returns the roster names in roster order.
func (s *Session) Members() []string {
	out := make([]string, len(s.members))
	copy(out, s.members)
	return out
}

// History returns a snapshot of the conversation log.
func (s *Session) History() []core.Message { return s.log.Snapshot() }

// Len returns the number of appended messages.
func (s *Session) Len() int { return s.log.Len() }

// Turns returns the number of agent turns delivered so far.
func (s *Session) Turns() int { return s.turns }

// Append appends m to the conversation log and notifies the observer. After
// the session has been cancelled or resolved it returns core.ErrCancelled and
// appends nothing.
func (s *Session) Append(m core.Message) (core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.ctx.Err() != nil {
		return core.Message{}, core.ErrCancelled
	}

	appended := s.log.Append(m)
	s.dispatcher.message(appended)

	return appended, nil
}

// ReportError surfaces a per-turn error to the observer without failing the
// session.
func (s *Session) ReportError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.dispatcher.error(err)
}

func (s *Session) startActors() {
	for _, name := range s.members {
		s.actors[name].start()
	}
}

// run is the session loop.
func (s *Session) run(wg *sync.WaitGroup) {
	defer wg.Done()

	if sem := s.runtime.sem; sem != nil {
		if err := sem.Acquire(s.ctx, 1); err != nil {
			s.finish(core.Message{}, core.ErrCancelled)
			return
		}
		defer sem.Release(1)
	}

	s.finish(s.loop())
}

func (s *Session) loop() (core.Message, error) {
	for {
		if s.ctx.Err() != nil {
			return core.Message{}, core.ErrCancelled
		}

		step, err := s.policy.Next(s.ctx, s)
		if err != nil {
			return core.Message{}, s.classify(err)
		}

		var (
			msg    core.Message
			author string
		)

		switch step.Kind {
		case StepDone:
			return step.Output, nil
		case StepInput:
			author = core.UserAuthor
			msg, err = s.requestInput()
		case StepAgent:
			author = step.Agent
			msg, err = s.deliver(step)
		default:
			err = fmt.Errorf("runtime: unknown step kind %d", step.Kind)
		}
		if err != nil {
			return core.Message{}, err
		}

		appended, err := s.Append(msg)
		if err != nil {
			return core.Message{}, err
		}

		if err := s.policy.Accept(s.ctx, s, author, appended); err != nil {
			return core.Message{}, s.classify(err)
		}
	}
}

// deliver sends a turn to the agent's mailbox and waits for the reply.
func (s *Session) deliver(step Step) (core.Message, error) {
	act, ok := s.actors[step.Agent]
	if !ok {
		return core.Message{}, &core.UnknownAgentError{Name: step.Agent, Context: "session roster"}
	}

	s.turns++
	turn := &core.Turn{
		SessionID: s.id,
		Index:     s.turns,
		Agent:     step.Agent,
		History:   s.log.Snapshot(),
		Handoffs:  step.Handoffs,
	}

	ctx, cancel := s.boundedContext(s.runtime.config.TurnTimeout)
	defer cancel()
	ctx, span := telemetry.StartTurnSpan(ctx, step.Agent, turn.Index)

	start := time.Now()
	msg, err := act.send(ctx, turn)
	if err != nil {
		err = s.turnError(ctx, step.Agent, err)
	}
	dur := time.Since(start)
	telemetry.EndSpan(span, err)
	s.runtime.metrics.TurnFinished(s.ctx, step.Agent, dur, err)
	s.runtime.logger.LogTurn(step.Agent, turn.Index, dur, err)
	if err != nil {
		return core.Message{}, err
	}

	msg.Author = step.Agent
	if msg.Role == "" {
		msg.Role = core.RoleAssistant
	}

	return msg, nil
}

// requestInput asks the input provider for the next user message.
func (s *Session) requestInput() (core.Message, error) {
	if s.input == nil {
		return core.Message{}, core.ErrMissingInputProvider
	}

	ctx, cancel := s.boundedContext(s.runtime.config.InputTimeout)
	defer cancel()
	ctx, span := telemetry.StartTurnSpan(ctx, core.UserAuthor, s.turns)

	msg, err := s.awaitInput(ctx)
	telemetry.EndSpan(span, err)

	return msg, err
}

func (s *Session) awaitInput(ctx context.Context) (core.Message, error) {
	type reply struct {
		msg core.Message
		err error
	}
	ch := make(chan reply, 1)

	// the provider may block on a terminal and ignore ctx; the goroutine is
	// abandoned on cancellation and not joined by StopWhenIdle
	go func() {
		msg, err := s.input.ProvideInput(ctx, s.log.Snapshot())
		ch <- reply{msg, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return core.Message{}, s.turnError(ctx, core.UserAuthor, r.err)
		}
		r.msg.Author = core.UserAuthor
		r.msg.Role = core.RoleUser
		return r.msg, nil
	case <-ctx.Done():
		return core.Message{}, s.turnError(ctx, core.UserAuthor, ctx.Err())
	}
}

func (s *Session) boundedContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(s.ctx, timeout)
	}
	return context.WithCancel(s.ctx)
}

// turnError classifies an error raised while waiting for agent.
func (s *Session) turnError(turnCtx context.Context, agent string, err error) error {
	switch {
	case s.ctx.Err() != nil:
		return core.ErrCancelled
	case errors.Is(turnCtx.Err(), context.DeadlineExceeded) && agent == core.UserAuthor:
		return &core.TurnTimeoutError{Agent: agent, Timeout: s.runtime.config.InputTimeout}
	case errors.Is(turnCtx.Err(), context.DeadlineExceeded):
		return &core.TurnTimeoutError{Agent: agent, Timeout: s.runtime.config.TurnTimeout}
	case agent == core.UserAuthor:
		return fmt.Errorf("input provider: %w", err)
	default:
		return core.NewAgentFailure(agent, err)
	}
}

func (s *Session) classify(err error) error {
	if s.ctx.Err() != nil {
		return core.ErrCancelled
	}
	return err
}

// finish releases the actors, drains the observer queue for at most
// ObserverTimeout and resolves the result exactly once.
func (s *Session) finish(output core.Message, err error) {
	if err != nil && !errors.Is(err, core.ErrCancelled) {
		s.ReportError(err)
	}

	s.runtime.logger.LogSession(s.policy.Name(), s.turns, time.Since(s.started), err)
	s.runtime.metrics.SessionFinished(context.WithoutCancel(s.ctx), s.policy.Name(), err)
	telemetry.EndSpan(s.span, err)

	s.abort()
	if timeout := s.runtime.config.ObserverTimeout; !s.dispatcher.drain(timeout) {
		s.runtime.logger.Warn("Observer did not drain, delivering remaining notifications in the background",
			"session_id", s.id, "timeout", timeout)
	}
	s.runtime.release(s)
	s.archive(output, err)
	s.result.resolve(output, err)
}

func (s *Session) archive(output core.Message, err error) {
	store := s.runtime.transcripts
	if store == nil {
		return
	}

	t := core.Transcript{
		SessionID: s.id,
		Policy:    s.policy.Name(),
		Members:   s.Members(),
		Messages:  s.log.Snapshot(),
		Output:    output,
		Turns:     s.turns,
		Started:   s.started,
		Finished:  time.Now(),
	}
	if err != nil {
		t.Err = err.Error()
	}

	if serr := store.Save(context.WithoutCancel(s.ctx), t); serr != nil {
		s.runtime.logger.Warn("Transcript not saved", "session_id", s.id, "error", serr)
	}
}

// abort closes the session for appends and stops actors and dispatcher.
func (s *Session) abort() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	for _, act := range s.actors {
		act.stop()
	}
	s.dispatcher.close()
}

// interrupt cancels the session. Holding mu guarantees that no append
// completes after interrupt returns.
func (s *Session) interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
}
