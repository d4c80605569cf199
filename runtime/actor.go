package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentcrew/core"
)

type envelope struct {
	ctx   context.Context
	turn  *core.Turn
	reply chan<- reply
}

type reply struct {
	msg core.Message
	err error
}

// actor owns the mailbox of one agent within one session. Turns are
// processed one at a time in delivery order.
type actor struct {
	agent   core.Agent
	mailbox chan envelope
	once    sync.Once
}

func newActor(a core.Agent, size int) *actor {
	return &actor{agent: a, mailbox: make(chan envelope, size)}
}

// start runs the actor goroutine. A turn abandoned by cancellation or timeout
// may still be running inside Respond; the goroutine exits once it returns
// and the mailbox is closed, so it is not joined by StopWhenIdle.
func (a *actor) start() {
	go func() {
		for env := range a.mailbox {
			env.reply <- a.respond(env)
		}
	}()
}

func (a *actor) respond(env envelope) (r reply) {
	defer func() {
		if p := recover(); p != nil {
			r = reply{err: fmt.Errorf("panic: %v", p)}
		}
	}()

	if err := env.ctx.Err(); err != nil {
		return reply{err: err}
	}

	msg, err := a.agent.Respond(env.ctx, env.turn)

	return reply{msg: msg, err: err}
}

// send delivers turn and waits for the reply or the end of ctx.
func (a *actor) send(ctx context.Context, turn *core.Turn) (core.Message, error) {
	ch := make(chan reply, 1)

	select {
	case a.mailbox <- envelope{ctx: ctx, turn: turn, reply: ch}:
	case <-ctx.Done():
		return core.Message{}, ctx.Err()
	}

	select {
	case r := <-ch:
		return r.msg, r.err
	case <-ctx.Done():
		return core.Message{}, ctx.Err()
	}
}

// stop closes the mailbox. The actor exits after its current turn.
func (a *actor) stop() {
	a.once.Do(func() { close(a.mailbox) })
}
