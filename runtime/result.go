package runtime

import (
	"context"
	"sync"

	"github.com/hupe1980/agentcrew/core"
)

// Result is the single-resolution handle of a session. It resolves exactly
// once with either an output message or an error:
//
//   - core.ErrCancelled after Cancel or cancellation of the invoke context
//   - *core.AgentFailure, *core.TurnTimeoutError, *core.InvalidHandoffError
//     or core.ErrMissingInputProvider for per-turn failures
//
// All methods are safe for concurrent use.
type Result struct {
	session *Session

	done   chan struct{}
	once   sync.Once
	output core.Message
	err    error
}

func newResult(s *Session) *Result {
	return &Result{session: s, done: make(chan struct{})}
}

// SessionID returns the id of the underlying session.
func (r *Result) SessionID() string { return r.session.id }

// Done returns a channel closed once the result has resolved.
func (r *Result) Done() <-chan struct{} { return r.done }

// Get waits for the result. Repeated calls return the same outcome. If ctx
// ends first, ctx.Err() is returned and the session keeps running.
func (r *Result) Get(ctx context.Context) (core.Message, error) {
	select {
	case <-r.done:
		return r.output, r.err
	case <-ctx.Done():
		return core.Message{}, ctx.Err()
	}
}

// Cancel stops the session. Once Cancel returns nothing more is appended to
// the conversation and the result resolves with core.ErrCancelled unless it
// already resolved. Cancel is idempotent.
func (r *Result) Cancel() {
	r.session.interrupt()
}

// History returns a snapshot of the session's conversation log. It stays
// available after resolution.
func (r *Result) History() []core.Message {
	return r.session.log.Snapshot()
}

func (r *Result) resolve(output core.Message, err error) {
	r.once.Do(func() {
		r.output = output
		r.err = err
		close(r.done)
	})
}
