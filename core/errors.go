package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors. Structured error types below match their sentinel through
// errors.Is so callers can branch on the kind without type assertions.
var (
	// Configuration-time errors.
	ErrEmptyRoster      = errors.New("roster must contain at least one agent")
	ErrDuplicateAgent   = errors.New("duplicate agent name in roster")
	ErrInvalidAgentName = errors.New("agent name must be non-empty")
	ErrInvalidMaxRounds = errors.New("max rounds must be positive")
	ErrDuplicateEdge    = errors.New("duplicate handoff edge")
	ErrUnknownAgent     = errors.New("unknown agent")

	// Runtime-state errors.
	ErrRuntimeNotActive = errors.New("runtime is not active")
	ErrAlreadyRunning   = errors.New("runtime is already running")

	// Per-turn errors.
	ErrInvalidHandoff       = errors.New("invalid handoff")
	ErrMissingInputProvider = errors.New("human input required but no input provider configured")
	ErrAgentFailure         = errors.New("agent failure")
	ErrTurnTimeout          = errors.New("turn timed out")
	ErrCancelled            = errors.New("orchestration cancelled")
)

// InvalidHandoffError reports a transfer directive rejected by the router.
type InvalidHandoffError struct {
	Source  string
	Target  string
	Allowed []string // targets reachable from Source
}

func (e *InvalidHandoffError) Error() string {
	allowed := "none"
	if len(e.Allowed) > 0 {
		allowed = strings.Join(e.Allowed, ", ")
	}
	return fmt.Sprintf("invalid handoff from %q to %q (allowed: %s)", e.Source, e.Target, allowed)
}

// Is matches ErrInvalidHandoff.
func (e *InvalidHandoffError) Is(target error) bool { return target == ErrInvalidHandoff }

// AgentFailure wraps an error returned by an agent's Respond.
type AgentFailure struct {
	Agent string
	Err   error
}

func (e *AgentFailure) Error() string {
	return fmt.Sprintf("agent %s failed: %v", e.Agent, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AgentFailure) Unwrap() error { return e.Err }

// Is matches ErrAgentFailure.
func (e *AgentFailure) Is(target error) bool { return target == ErrAgentFailure }

// NewAgentFailure wraps err unless it already is an *AgentFailure.
func NewAgentFailure(agent string, err error) error {
	var af *AgentFailure
	if errors.As(err, &af) {
		return err
	}
	return &AgentFailure{Agent: agent, Err: err}
}

// TurnTimeoutError reports that an agent or input provider exceeded the
// configured per-turn timeout.
type TurnTimeoutError struct {
	Agent   string
	Timeout time.Duration
}

func (e *TurnTimeoutError) Error() string {
	return fmt.Sprintf("turn of %s exceeded %s", e.Agent, e.Timeout)
}

// Is matches ErrTurnTimeout.
func (e *TurnTimeoutError) Is(target error) bool { return target == ErrTurnTimeout }

// DuplicateEdgeError reports a handoff edge added twice with different rationale.
type DuplicateEdgeError struct {
	Source, Target       string
	Existing, Conflicting string
}

func (e *DuplicateEdgeError) Error() string {
	return fmt.Sprintf("handoff %s -> %s already defined with rationale %q (got %q)", e.Source, e.Target, e.Existing, e.Conflicting)
}

// Is matches ErrDuplicateEdge.
func (e *DuplicateEdgeError) Is(target error) bool { return target == ErrDuplicateEdge }

// UnknownAgentError reports a reference to an agent absent from the roster.
type UnknownAgentError struct {
	Name    string
	Context string // where the reference was found, e.g. "handoff source"
}

func (e *UnknownAgentError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("unknown agent %q", e.Name)
	}
	return fmt.Sprintf("unknown agent %q in %s", e.Name, e.Context)
}

// Is matches ErrUnknownAgent.
func (e *UnknownAgentError) Is(target error) bool { return target == ErrUnknownAgent }
