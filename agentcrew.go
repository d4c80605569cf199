// Package agentcrew provides a high-level façade over the runtime and the
// orchestration drivers, enabling rapid construction of multi-agent
// conversations. Most applications interact with this package by:
//  1. Creating a Crew via New() (optionally overriding runtime settings or
//     the transcript store)
//  2. Building an orchestration (orchestration.NewGroupChat or
//     orchestration.NewHandoff)
//  3. Running tasks asynchronously (Invoke) or synchronously (InvokeSync)
//  4. Calling Shutdown to wait for running sessions
//
// The façade delegates session hosting to runtime.Runtime. All defaults are
// safe for local development and testing.
package agentcrew

import (
	"context"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/runtime"
	"github.com/hupe1980/agentcrew/session"
)

// Orchestration is implemented by orchestration.GroupChat and
// orchestration.Handoff.
type Orchestration interface {
	Invoke(ctx context.Context, task string, rt *runtime.Runtime) (*runtime.Result, error)
}

// Options configures the Crew instance.
type Options struct {
	// RuntimeConfig contains the session limits and timeouts.
	RuntimeConfig runtime.Config

	// TranscriptStore archives resolved sessions. Defaults to an in-memory
	// store keeping the last TranscriptLimit transcripts.
	TranscriptStore core.TranscriptStore
	TranscriptLimit int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Crew is the high-level façade owning a started runtime.
type Crew struct {
	opts        Options
	runtime     *runtime.Runtime
	transcripts core.TranscriptStore
}

// New creates and starts a Crew.
func New(optFns ...func(o *Options)) (*Crew, error) {
	opts := Options{
		RuntimeConfig:   runtime.DefaultConfig,
		TranscriptLimit: 100,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.TranscriptStore == nil {
		opts.TranscriptStore = session.NewInMemoryStore(opts.TranscriptLimit)
	}

	rt := runtime.New(func(o *runtime.Options) {
		o.Config = opts.RuntimeConfig
		o.Logger = opts.Logger
		o.Transcripts = opts.TranscriptStore
	})
	if err := rt.Start(); err != nil {
		return nil, err
	}

	return &Crew{opts: opts, runtime: rt, transcripts: opts.TranscriptStore}, nil
}

// Runtime returns the underlying runtime.
func (c *Crew) Runtime() *runtime.Runtime { return c.runtime }

// Transcripts returns the transcript store.
func (c *Crew) Transcripts() core.TranscriptStore { return c.transcripts }

// Invoke starts task on o and returns its result handle.
func (c *Crew) Invoke(ctx context.Context, o Orchestration, task string) (*runtime.Result, error) {
	return o.Invoke(ctx, task, c.runtime)
}

// InvokeSync runs task on o and waits for the output. If ctx ends first the
// session is cancelled and ctx's error is returned.
func (c *Crew) InvokeSync(ctx context.Context, o Orchestration, task string) (core.Message, error) {
	res, err := o.Invoke(ctx, task, c.runtime)
	if err != nil {
		return core.Message{}, err
	}

	out, err := res.Get(ctx)
	if err != nil && ctx.Err() != nil {
		res.Cancel()
		return core.Message{}, ctx.Err()
	}

	return out, err
}

// Shutdown rejects new tasks and waits until every running session resolved.
func (c *Crew) Shutdown(ctx context.Context) error {
	return c.runtime.StopWhenIdle(ctx)
}
