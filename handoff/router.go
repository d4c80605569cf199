package handoff

import (
	"sync"

	"github.com/hupe1980/agentcrew/core"
)

// Router holds the active agent of one handoff session. The active agent
// changes only through an accepted Transfer.
type Router struct {
	graph *Graph

	mu     sync.RWMutex
	active string
}

// NewRouter creates a Router starting at entry, which must be a roster member.
// The entry agent needs no incoming edge.
func NewRouter(graph *Graph, entry string) (*Router, error) {
	if !graph.Has(entry) {
		return nil, &core.UnknownAgentError{Name: entry, Context: "entry agent"}
	}
	return &Router{graph: graph, active: entry}, nil
}

// Active returns the currently active agent.
func (r *Router) Active() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Options returns the transfers the active agent may request.
func (r *Router) Options() []core.HandoffOption {
	return r.graph.Targets(r.Active())
}

// Transfer validates t against the graph. An accepted transfer makes the
// target active; a rejected one returns *core.InvalidHandoffError and leaves
// the active agent unchanged.
func (r *Router) Transfer(t core.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.graph.Allowed(r.active, t.Target) {
		return &core.InvalidHandoffError{
			Source:  r.active,
			Target:  t.Target,
			Allowed: r.graph.TargetNames(r.active),
		}
	}

	r.active = t.Target

	return nil
}
