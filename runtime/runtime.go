package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/internal/telemetry"
	"github.com/hupe1980/agentcrew/logging"
	"golang.org/x/sync/semaphore"
)

// State is the lifecycle state of a Runtime.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config defines tuning parameters for the Runtime.
type Config struct {
	// MaxConcurrentSessions limits how many sessions execute turns at the
	// same time. Further sessions wait for a slot. 0 means unlimited.
	MaxConcurrentSessions int64

	// TurnTimeout bounds a single agent turn. 0 disables the bound.
	TurnTimeout time.Duration

	// InputTimeout bounds a single human input request. 0 disables the
	// bound.
	InputTimeout time.Duration

	// ObserverTimeout bounds how long the session waits for room in a full
	// observer queue before dropping the notification.
	ObserverTimeout time.Duration

	// ObserverQueueSize is the per-session observer queue capacity.
	ObserverQueueSize int

	// MailboxSize is the capacity of each agent mailbox.
	MailboxSize int
}

// DefaultConfig provides the default configuration values.
var DefaultConfig = Config{
	MaxConcurrentSessions: 0,
	TurnTimeout:           0,
	InputTimeout:          0,
	ObserverTimeout:       time.Second,
	ObserverQueueSize:     64,
	MailboxSize:           1,
}

// Options configures a Runtime instance using the functional options pattern.
//
// Example:
//
//	rt := runtime.New(func(o *runtime.Options) {
//		o.Config.TurnTimeout = 30 * time.Second
//		o.Logger = logging.NewDefaultSlogLogger()
//	})
type Options struct {
	// Config contains operational parameters. Defaults to DefaultConfig.
	Config Config

	// Logger provides structured logging. Defaults to NoOpLogger.
	Logger logging.Logger

	// Transcripts, when set, receives the transcript of every session before
	// its result resolves.
	Transcripts core.TranscriptStore
}

// Runtime hosts orchestration sessions. See the package documentation for the
// lifecycle and concurrency model. A Runtime is not restartable: once
// stopped, Start and Invoke return core.ErrRuntimeNotActive.
//
// All methods are safe for concurrent use.
type Runtime struct {
	config      Config
	logger      logging.EventLogger
	sem         *semaphore.Weighted // nil when unlimited
	transcripts core.TranscriptStore
	metrics     *telemetry.Metrics

	mu       sync.Mutex
	state    State
	sessions map[string]*Session
	wg       sync.WaitGroup // session loops
}

// New creates a Runtime in the NotStarted state.
func New(optFns ...func(o *Options)) *Runtime {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := opts.Config
	if cfg.ObserverTimeout <= 0 {
		cfg.ObserverTimeout = DefaultConfig.ObserverTimeout
	}
	if cfg.ObserverQueueSize <= 0 {
		cfg.ObserverQueueSize = DefaultConfig.ObserverQueueSize
	}
	if cfg.MailboxSize <= 0 {
		cfg.MailboxSize = DefaultConfig.MailboxSize
	}

	r := &Runtime{
		config:      cfg,
		logger:      logging.Events(opts.Logger),
		sessions:    make(map[string]*Session),
		transcripts: opts.Transcripts,
		metrics:     telemetry.Default(),
	}
	if cfg.MaxConcurrentSessions > 0 {
		r.sem = semaphore.NewWeighted(cfg.MaxConcurrentSessions)
	}

	return r
}

// Config returns the effective configuration.
func (r *Runtime) Config() Config { return r.config }

// State returns the current lifecycle state.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start transitions the runtime to Running. A second call while running
// returns core.ErrAlreadyRunning; a call after StopWhenIdle returns
// core.ErrRuntimeNotActive.
func (r *Runtime) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateNotStarted:
		r.state = StateRunning
		r.logger.Info("Runtime started")
		return nil
	case StateRunning:
		return core.ErrAlreadyRunning
	default:
		return fmt.Errorf("%w: runtime is %s", core.ErrRuntimeNotActive, r.state)
	}
}

// ActiveSessions returns the number of sessions not yet finished.
func (r *Runtime) ActiveSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// InvokeOptions configures a single session.
type InvokeOptions struct {
	// Observer receives every appended message and per-turn error.
	Observer core.Observer

	// InputProvider answers StepInput. Without one, a StepInput fails the
	// session with core.ErrMissingInputProvider.
	InputProvider core.InputProvider
}

// Invoke starts a session driven by policy over roster, seeded with task.
//
// The roster must be non-empty with unique, non-empty names. Invoke returns
// core.ErrRuntimeNotActive unless the runtime is Running, in which case
// nothing is appended and no goroutine is started. On success the task has
// been appended as the first message and the session runs in the background
// until the returned Result resolves.
//
// Cancelling ctx cancels the session.
func (r *Runtime) Invoke(ctx context.Context, policy Policy, roster []core.Agent, task core.Message, optFns ...func(o *InvokeOptions)) (*Result, error) {
	if policy == nil {
		return nil, fmt.Errorf("runtime: nil policy")
	}
	if _, err := core.ValidateRoster(roster); err != nil {
		return nil, err
	}

	opts := InvokeOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRunning {
		return nil, fmt.Errorf("%w: runtime is %s", core.ErrRuntimeNotActive, r.state)
	}

	s := newSession(ctx, r, policy, roster, opts)
	r.sessions[s.id] = s

	s.startActors()
	s.dispatcher.start()

	task.Author = core.UserAuthor
	task.Role = core.RoleUser
	if _, err := s.Append(task); err != nil {
		s.abort()
		telemetry.EndSpan(s.span, err)
		delete(r.sessions, s.id)
		return nil, err
	}
	r.metrics.SessionStarted(ctx, policy.Name())

	// registered while holding r.mu so StopWhenIdle never misses a session
	r.wg.Add(1)
	go s.run(&r.wg)

	r.logger.Debug("Session started", "session_id", s.id, "policy", policy.Name(), "agents", len(roster))

	return s.result, nil
}

// StopWhenIdle rejects new invocations, waits until every session has
// resolved, then marks the runtime Stopped. Agent calls and input requests
// abandoned by cancellation or timeout are not waited for.
// If ctx ends first its error is returned and the runtime stays Stopping;
// StopWhenIdle may be called again. Stopping a stopped runtime is a no-op.
func (r *Runtime) StopWhenIdle(ctx context.Context) error {
	r.mu.Lock()
	switch r.state {
	case StateNotStarted:
		r.mu.Unlock()
		return fmt.Errorf("%w: runtime was never started", core.ErrRuntimeNotActive)
	case StateStopped:
		r.mu.Unlock()
		return nil
	}
	r.state = StateStopping
	r.mu.Unlock()

	idle := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(idle)
	}()

	select {
	case <-idle:
	case <-ctx.Done():
		return ctx.Err()
	}

	r.mu.Lock()
	r.state = StateStopped
	r.mu.Unlock()

	r.logger.Info("Runtime stopped")

	return nil
}

func (r *Runtime) release(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s.id)
}
