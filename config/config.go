// Package config loads crew definitions: runtime settings, the agent roster,
// the handoff table and logging, from YAML with environment overrides.
package config

import "time"

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "agentcrew.yaml"

// Orchestration modes.
const (
	ModeGroupChat = "group_chat"
	ModeHandoff   = "handoff"
)

// Model providers understood by DefaultModelFactory.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config is the root configuration.
type Config struct {
	Runtime       RuntimeConfig       `yaml:"runtime"`
	Orchestration OrchestrationConfig `yaml:"orchestration"`
	Logging       LoggingConfig       `yaml:"logging"`
	Agents        []AgentConfig       `yaml:"agents"`
	Handoffs      []HandoffConfig     `yaml:"handoffs"`
}

// RuntimeConfig mirrors runtime.Config.
type RuntimeConfig struct {
	MaxConcurrentSessions int64         `yaml:"max_concurrent_sessions"`
	TurnTimeout           time.Duration `yaml:"turn_timeout"`
	InputTimeout          time.Duration `yaml:"input_timeout"` // 0 waits for the human indefinitely
	ObserverTimeout       time.Duration `yaml:"observer_timeout"`
	ObserverQueueSize     int           `yaml:"observer_queue_size"`
	MailboxSize           int           `yaml:"mailbox_size"`
}

// OrchestrationConfig selects the control policy and its bounds.
type OrchestrationConfig struct {
	Mode          string `yaml:"mode"`
	MaxRounds     int    `yaml:"max_rounds"` // group chat only
	MaxTurns      int    `yaml:"max_turns"`
	MaxRejections int    `yaml:"max_rejections"` // handoff only
	EntryAgent    string `yaml:"entry_agent"`    // handoff only
}

// LoggingConfig configures the CrewLogger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"` // json or text
	AddSource bool   `yaml:"add_source"`
}

// AgentConfig describes one model-backed roster member.
type AgentConfig struct {
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	Instructions string  `yaml:"instructions"`
	Provider     string  `yaml:"provider"`
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
}

// HandoffConfig is one directed edge of the handoff table.
type HandoffConfig struct {
	Source    string `yaml:"source"`
	Target    string `yaml:"target"`
	Rationale string `yaml:"rationale"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Runtime: RuntimeConfig{
			MaxConcurrentSessions: 0,
			TurnTimeout:           2 * time.Minute,
			InputTimeout:          0,
			ObserverTimeout:       time.Second,
			ObserverQueueSize:     64,
			MailboxSize:           1,
		},
		Orchestration: OrchestrationConfig{
			Mode:          ModeGroupChat,
			MaxRounds:     5,
			MaxRejections: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
