package core

import "context"

// Agent defines the contract every conversation participant must implement.
//
// An agent is an opaque capability: given the conversation so far it produces
// the next message. It may internally call models or tools; the engine only
// routes, sequences and bounds what it returns. Respond is the single
// suspension point of a turn and may take arbitrarily long.
//
// Implementations must:
//   - Respect context cancellation (the runtime abandons the call otherwise)
//   - Return a *AgentFailure (or any error, which the runtime wraps) on failure
//   - Treat the Turn as read-only
type Agent interface {
	Name() string
	Description() string
	Respond(ctx context.Context, turn *Turn) (Message, error)
}

// HandoffOption describes a transfer an agent is allowed to request in the
// current turn. Rationale is the human-readable hint configured for the edge.
type HandoffOption struct {
	Target    string `json:"target"`
	Rationale string `json:"rationale"`
}

// Turn is the context delivered to an agent's mailbox.
type Turn struct {
	SessionID string
	Index     int // 1-based count of agent turns in the session
	Agent     string
	History   []Message
	Handoffs  []HandoffOption
}

// CanTransfer reports whether target is among the turn's handoff options.
func (t *Turn) CanTransfer(target string) bool {
	for _, h := range t.Handoffs {
		if h.Target == target {
			return true
		}
	}
	return false
}
