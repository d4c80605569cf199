package orchestration

import (
	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/runtime"
)

// DefaultMaxRejections is the number of consecutive rejected handoffs after
// which a handoff session fails.
const DefaultMaxRejections = 3

// Options configures an orchestration.
type Options struct {
	// Observer receives every appended message and per-turn error.
	Observer core.Observer

	// ResponseCallback is called with every agent reply.
	ResponseCallback func(core.Message)

	// InputProvider supplies human input when routing suspends for it.
	InputProvider core.InputProvider

	// EntryAgent is the initially active agent of a handoff orchestration.
	// Defaults to the first member.
	EntryAgent string

	// MaxTurns ends the session with the last message after this many agent
	// turns. 0 means unbounded.
	MaxTurns int

	// MaxRejections fails a handoff session after this many consecutive
	// rejected transfers.
	MaxRejections int

	// Logger provides structured logging. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Option mutates Options.
type Option func(o *Options)

// WithObserver sets the observer notified of every message and error.
func WithObserver(observer core.Observer) Option {
	return func(o *Options) { o.Observer = observer }
}

// WithResponseCallback sets a callback invoked with every agent reply.
func WithResponseCallback(fn func(core.Message)) Option {
	return func(o *Options) { o.ResponseCallback = fn }
}

// WithInputProvider sets the human input provider.
func WithInputProvider(p core.InputProvider) Option {
	return func(o *Options) { o.InputProvider = p }
}

// WithEntryAgent designates the initially active agent.
func WithEntryAgent(name string) Option {
	return func(o *Options) { o.EntryAgent = name }
}

// WithMaxTurns bounds the number of agent turns.
func WithMaxTurns(n int) Option {
	return func(o *Options) { o.MaxTurns = n }
}

// WithMaxRejections sets how many consecutive rejected handoffs are tolerated.
func WithMaxRejections(n int) Option {
	return func(o *Options) { o.MaxRejections = n }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func buildOptions(optFns []Option) Options {
	opts := Options{
		MaxRejections: DefaultMaxRejections,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxRejections <= 0 {
		opts.MaxRejections = DefaultMaxRejections
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return opts
}

// observer combines the configured observer and response callback.
func (o Options) observer() core.Observer {
	if o.ResponseCallback == nil {
		return o.Observer
	}
	return core.ObserverFuncs{
		Message: func(m core.Message) {
			if m.Role == core.RoleAssistant {
				o.ResponseCallback(m)
			}
			if o.Observer != nil {
				o.Observer.OnMessage(m)
			}
		},
		Error: func(err error) {
			if o.Observer != nil {
				o.Observer.OnError(err)
			}
		},
	}
}

func (o Options) invokeOptions(io *runtime.InvokeOptions) {
	io.Observer = o.observer()
	io.InputProvider = o.InputProvider
}

// lastMessage returns the final entry of the session log.
func lastMessage(s *runtime.Session) core.Message {
	h := s.History()
	return h[len(h)-1]
}
