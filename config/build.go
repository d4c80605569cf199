package config

import (
	"fmt"
	"io"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/agentcrew/agent"
	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/handoff"
	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/model"
	"github.com/hupe1980/agentcrew/model/anthropic"
	"github.com/hupe1980/agentcrew/model/openai"
	"github.com/hupe1980/agentcrew/orchestration"
	"github.com/hupe1980/agentcrew/runtime"
)

// ModelFactory creates the model backing a configured agent.
type ModelFactory func(a AgentConfig) (model.Model, error)

// DefaultModelFactory builds an OpenAI model (the default provider) or an
// Anthropic model. API keys are read from the environment by the SDKs.
func DefaultModelFactory(a AgentConfig) (model.Model, error) {
	switch a.Provider {
	case "", ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			if a.Model != "" {
				o.Model = a.Model
			}
			if a.Temperature > 0 {
				o.Temperature = a.Temperature
			}
		}), nil
	case ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			if a.Model != "" {
				o.Model = anthropicsdk.Model(a.Model)
			}
			if a.Temperature > 0 {
				o.Temperature = a.Temperature
			}
		}), nil
	default:
		return nil, fmt.Errorf("agent %s: unsupported provider %q", a.Name, a.Provider)
	}
}

// RuntimeOptions returns an option applying the runtime section and logger.
func (c *Config) RuntimeOptions(logger logging.Logger) func(o *runtime.Options) {
	return func(o *runtime.Options) {
		o.Config = runtime.Config{
			MaxConcurrentSessions: c.Runtime.MaxConcurrentSessions,
			TurnTimeout:           c.Runtime.TurnTimeout,
			InputTimeout:          c.Runtime.InputTimeout,
			ObserverTimeout:       c.Runtime.ObserverTimeout,
			ObserverQueueSize:     c.Runtime.ObserverQueueSize,
			MailboxSize:           c.Runtime.MailboxSize,
		}
		if logger != nil {
			o.Logger = logger
		}
	}
}

// OrchestrationOptions returns the options derived from the orchestration
// section. Unset values are omitted so orchestration defaults apply.
func (c *Config) OrchestrationOptions() []orchestration.Option {
	var opts []orchestration.Option
	if c.Orchestration.MaxTurns > 0 {
		opts = append(opts, orchestration.WithMaxTurns(c.Orchestration.MaxTurns))
	}
	if c.Orchestration.MaxRejections > 0 {
		opts = append(opts, orchestration.WithMaxRejections(c.Orchestration.MaxRejections))
	}
	if c.Orchestration.EntryAgent != "" {
		opts = append(opts, orchestration.WithEntryAgent(c.Orchestration.EntryAgent))
	}
	return opts
}

// BuildHandoffs converts the handoff table. Conflicting duplicates surface
// when the table is built against a roster.
func (c *Config) BuildHandoffs() *handoff.Handoffs {
	h := handoff.New()
	for _, e := range c.Handoffs {
		h.Add(e.Source, e.Target, e.Rationale)
	}
	return h
}

// NewLogger builds a CrewLogger from the logging section writing to out.
func (c *Config) NewLogger(out io.Writer) *logging.CrewLogger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(c.Logging.Level),
		Format:    c.Logging.Format,
		Output:    out,
		AddSource: c.Logging.AddSource,
		Component: "agentcrew",
	})
}

// BuildAgents creates a ModelAgent per configured agent in order. A nil
// factory selects DefaultModelFactory.
func (c *Config) BuildAgents(factory ModelFactory, optFns ...func(o *agent.ModelAgentOptions)) ([]core.Agent, error) {
	if factory == nil {
		factory = DefaultModelFactory
	}

	agents := make([]core.Agent, 0, len(c.Agents))
	for _, a := range c.Agents {
		llm, err := factory(a)
		if err != nil {
			return nil, err
		}

		a := a
		agents = append(agents, agent.NewModelAgent(a.Name, llm, func(o *agent.ModelAgentOptions) {
			o.Description = a.Description
			if a.Instructions != "" {
				o.Instruction = agent.NewInstructionFromText(a.Instructions)
			}
			for _, fn := range optFns {
				fn(o)
			}
		}))
	}

	return agents, nil
}
