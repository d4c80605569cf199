package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// Parse decodes YAML data over the defaults and validates the result.
// Environment variables are not consulted.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}
	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setInt64(&cfg.Runtime.MaxConcurrentSessions, "AGENTCREW_MAX_CONCURRENT_SESSIONS")
	setDuration(&cfg.Runtime.TurnTimeout, "AGENTCREW_TURN_TIMEOUT")
	setDuration(&cfg.Runtime.InputTimeout, "AGENTCREW_INPUT_TIMEOUT")
	setDuration(&cfg.Runtime.ObserverTimeout, "AGENTCREW_OBSERVER_TIMEOUT")
	setInt(&cfg.Runtime.ObserverQueueSize, "AGENTCREW_OBSERVER_QUEUE_SIZE")
	setInt(&cfg.Runtime.MailboxSize, "AGENTCREW_MAILBOX_SIZE")

	setString(&cfg.Orchestration.Mode, "AGENTCREW_MODE")
	setInt(&cfg.Orchestration.MaxRounds, "AGENTCREW_MAX_ROUNDS")
	setInt(&cfg.Orchestration.MaxTurns, "AGENTCREW_MAX_TURNS")
	setInt(&cfg.Orchestration.MaxRejections, "AGENTCREW_MAX_REJECTIONS")
	setString(&cfg.Orchestration.EntryAgent, "AGENTCREW_ENTRY_AGENT")

	setString(&cfg.Logging.Level, "AGENTCREW_LOG_LEVEL")
	setString(&cfg.Logging.Format, "AGENTCREW_LOG_FORMAT")
	setBool(&cfg.Logging.AddSource, "AGENTCREW_LOG_ADD_SOURCE")
}

// validate checks value ranges and cross references.
func validate(cfg *Config) error {
	switch cfg.Orchestration.Mode {
	case ModeGroupChat:
		if cfg.Orchestration.MaxRounds < 1 {
			return errors.New("orchestration.max_rounds must be >= 1")
		}
	case ModeHandoff:
	default:
		return fmt.Errorf("orchestration.mode %q must be %s or %s", cfg.Orchestration.Mode, ModeGroupChat, ModeHandoff)
	}
	if cfg.Orchestration.MaxTurns < 0 {
		return errors.New("orchestration.max_turns must be >= 0")
	}
	if cfg.Runtime.MaxConcurrentSessions < 0 {
		return errors.New("runtime.max_concurrent_sessions must be >= 0")
	}
	if cfg.Runtime.TurnTimeout < 0 || cfg.Runtime.InputTimeout < 0 || cfg.Runtime.ObserverTimeout < 0 {
		return errors.New("runtime timeouts must be >= 0")
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		return fmt.Errorf("logging.format %q must be json or text", cfg.Logging.Format)
	}

	names := make(map[string]struct{}, len(cfg.Agents))
	for i, a := range cfg.Agents {
		if a.Name == "" {
			return fmt.Errorf("agents[%d].name is required", i)
		}
		if _, dup := names[a.Name]; dup {
			return fmt.Errorf("agents[%d]: duplicate name %q", i, a.Name)
		}
		names[a.Name] = struct{}{}
		switch a.Provider {
		case "", ProviderOpenAI, ProviderAnthropic:
		default:
			return fmt.Errorf("agents[%d].provider %q is not supported", i, a.Provider)
		}
	}

	for i, h := range cfg.Handoffs {
		if h.Source == "" || h.Target == "" {
			return fmt.Errorf("handoffs[%d]: source and target are required", i)
		}
	}

	if e := cfg.Orchestration.EntryAgent; e != "" && len(names) > 0 {
		if _, ok := names[e]; !ok {
			return fmt.Errorf("orchestration.entry_agent %q is not a configured agent", e)
		}
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
