package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/model"
	"github.com/hupe1980/agentcrew/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const supportYAML = `
runtime:
  turn_timeout: 45s
  input_timeout: 10m
  max_concurrent_sessions: 4
orchestration:
  mode: handoff
  entry_agent: TriageAgent
  max_rejections: 2
logging:
  level: debug
  format: json
agents:
  - name: TriageAgent
    description: A customer support agent that triages issues.
    instructions: Handle customer requests.
  - name: RefundAgent
    description: A customer support agent that handles refunds.
    instructions: Handle refund requests.
    provider: anthropic
    model: claude-3-5-haiku-latest
handoffs:
  - source: TriageAgent
    target: RefundAgent
    rationale: Transfer to this agent if the issue is refund related
  - source: RefundAgent
    target: TriageAgent
    rationale: Transfer to this agent if the issue is not refund related
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentcrew.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, ModeGroupChat, cfg.Orchestration.Mode)
	assert.Equal(t, 5, cfg.Orchestration.MaxRounds)
	assert.Equal(t, time.Second, cfg.Runtime.ObserverTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Runtime.TurnTimeout)
	assert.Zero(t, cfg.Runtime.InputTimeout)
	assert.NoError(t, validate(&cfg))
}

func TestLoadYAMLOverride(t *testing.T) {
	cfg, err := LoadFrom(writeFile(t, supportYAML))
	require.NoError(t, err)

	assert.Equal(t, ModeHandoff, cfg.Orchestration.Mode)
	assert.Equal(t, 45*time.Second, cfg.Runtime.TurnTimeout)
	assert.Equal(t, int64(4), cfg.Runtime.MaxConcurrentSessions)
	assert.Equal(t, "json", cfg.Logging.Format)
	require.Len(t, cfg.Agents, 2)
	assert.Equal(t, ProviderAnthropic, cfg.Agents[1].Provider)
	require.Len(t, cfg.Handoffs, 2)

	// unchanged fields keep defaults
	assert.Equal(t, time.Second, cfg.Runtime.ObserverTimeout)
	assert.Equal(t, 64, cfg.Runtime.ObserverQueueSize)
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoadYAMLMalformed(t *testing.T) {
	_, err := LoadFrom(writeFile(t, "runtime: [unterminated"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("AGENTCREW_TURN_TIMEOUT", "1m")
	t.Setenv("AGENTCREW_INPUT_TIMEOUT", "30m")
	t.Setenv("AGENTCREW_MAX_REJECTIONS", "7")
	t.Setenv("AGENTCREW_LOG_LEVEL", "warn")
	t.Setenv("AGENTCREW_MAX_ROUNDS", "not-a-number")

	cfg, err := LoadFrom(writeFile(t, supportYAML))
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Runtime.TurnTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Runtime.InputTimeout)
	assert.Equal(t, 7, cfg.Orchestration.MaxRejections)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Orchestration.MaxRounds)
}

func TestValidate(t *testing.T) {
	for name, content := range map[string]string{
		"unknown mode":       "orchestration:\n  mode: sequential\n",
		"zero rounds":        "orchestration:\n  max_rounds: 0\n",
		"bad format":         "logging:\n  format: xml\n",
		"negative input":     "runtime:\n  input_timeout: -1s\n",
		"unnamed agent":      "agents:\n  - description: x\n",
		"duplicate agent":    "agents:\n  - name: A\n  - name: A\n",
		"unknown provider":   "agents:\n  - name: A\n    provider: ollama\n",
		"incomplete handoff": "handoffs:\n  - source: A\n",
		"unknown entry":      "orchestration:\n  mode: handoff\n  entry_agent: B\nagents:\n  - name: A\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content))
			assert.Error(t, err)
		})
	}
}

func TestRuntimeOptions(t *testing.T) {
	cfg, err := Parse([]byte(supportYAML))
	require.NoError(t, err)

	rt := runtime.New(cfg.RuntimeOptions(nil))
	assert.Equal(t, 45*time.Second, rt.Config().TurnTimeout)
	assert.Equal(t, 10*time.Minute, rt.Config().InputTimeout)
	assert.Equal(t, int64(4), rt.Config().MaxConcurrentSessions)
	assert.Equal(t, time.Second, rt.Config().ObserverTimeout)
}

func TestBuildHandoffs(t *testing.T) {
	cfg, err := Parse([]byte(supportYAML))
	require.NoError(t, err)

	graph, err := cfg.BuildHandoffs().Build([]string{"TriageAgent", "RefundAgent"})
	require.NoError(t, err)
	assert.True(t, graph.Allowed("TriageAgent", "RefundAgent"))
	rationale, ok := graph.Rationale("RefundAgent", "TriageAgent")
	assert.True(t, ok)
	assert.Equal(t, "Transfer to this agent if the issue is not refund related", rationale)

	_, err = cfg.BuildHandoffs().Build([]string{"TriageAgent"})
	assert.ErrorIs(t, err, core.ErrUnknownAgent)
}

func TestBuildAgents(t *testing.T) {
	cfg, err := Parse([]byte(supportYAML))
	require.NoError(t, err)

	var seen []AgentConfig
	agents, err := cfg.BuildAgents(func(a AgentConfig) (model.Model, error) {
		seen = append(seen, a)
		return model.NewMockModel(a.Name), nil
	})
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "TriageAgent", agents[0].Name())
	assert.Equal(t, "A customer support agent that handles refunds.", agents[1].Description())
	assert.Equal(t, "claude-3-5-haiku-latest", seen[1].Model)

	_, err = cfg.BuildAgents(func(AgentConfig) (model.Model, error) { return nil, assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}

func TestOrchestrationOptions(t *testing.T) {
	cfg, err := Parse([]byte(supportYAML))
	require.NoError(t, err)
	assert.Len(t, cfg.OrchestrationOptions(), 2)

	d := Defaults()
	assert.Len(t, d.OrchestrationOptions(), 1)
}

func TestNewLogger(t *testing.T) {
	cfg, err := Parse([]byte(supportYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Debug("hello", "k", "v")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"component":"agentcrew"`)
}
