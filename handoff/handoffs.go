// Package handoff implements rule-based routing between agents: a builder for
// the table of allowed transfers, the immutable Graph validated against a
// roster, and the Router holding the active agent of a session.
package handoff

import (
	"sort"

	"github.com/hupe1980/agentcrew/core"
)

// Handoffs is a chainable builder for the handoff table. The first
// configuration error is recorded and reported by Err and Build; later calls
// are ignored.
//
//	h := handoff.New().
//		AddMany("TriageAgent", map[string]string{
//			"RefundAgent":      "Transfer to this agent if the issue is refund related",
//			"OrderStatusAgent": "Transfer to this agent if the issue is order status related",
//		}).
//		Add("RefundAgent", "TriageAgent", "Transfer to this agent if the issue is not refund related")
type Handoffs struct {
	edges map[string]map[string]string
	err   error
}

// New creates an empty handoff table.
func New() *Handoffs {
	return &Handoffs{edges: make(map[string]map[string]string)}
}

// Add registers the edge source -> target. Adding the same edge with the same
// rationale again is a no-op; a conflicting rationale records a
// *core.DuplicateEdgeError.
func (h *Handoffs) Add(source, target, rationale string) *Handoffs {
	if h.err != nil {
		return h
	}

	targets, ok := h.edges[source]
	if !ok {
		targets = make(map[string]string)
		h.edges[source] = targets
	}

	if existing, ok := targets[target]; ok {
		if existing != rationale {
			h.err = &core.DuplicateEdgeError{Source: source, Target: target, Existing: existing, Conflicting: rationale}
		}
		return h
	}

	targets[target] = rationale

	return h
}

// AddMany registers one edge from source per entry of targets. Entries are
// added in sorted target order so error reporting is deterministic.
func (h *Handoffs) AddMany(source string, targets map[string]string) *Handoffs {
	for _, target := range core.SortedKeys(targets) {
		h.Add(source, target, targets[target])
	}
	return h
}

// Err returns the first configuration error recorded by Add or AddMany.
func (h *Handoffs) Err() error { return h.err }

// Len returns the number of distinct edges.
func (h *Handoffs) Len() int {
	n := 0
	for _, targets := range h.edges {
		n += len(targets)
	}
	return n
}

// Build validates the table against roster and returns the immutable Graph.
// Every endpoint must name a roster member; violations are reported as
// *core.UnknownAgentError, checking sources then targets in sorted order.
func (h *Handoffs) Build(roster []string) (*Graph, error) {
	if h.err != nil {
		return nil, h.err
	}

	members := make(map[string]struct{}, len(roster))
	for _, name := range roster {
		members[name] = struct{}{}
	}

	edges := make(map[string]map[string]string, len(h.edges))
	for _, source := range core.SortedKeys(h.edges) {
		if _, ok := members[source]; !ok {
			return nil, &core.UnknownAgentError{Name: source, Context: "handoff source"}
		}

		targets := h.edges[source]
		copied := make(map[string]string, len(targets))
		for _, target := range core.SortedKeys(targets) {
			if _, ok := members[target]; !ok {
				return nil, &core.UnknownAgentError{Name: target, Context: "handoff target of " + source}
			}
			copied[target] = targets[target]
		}
		edges[source] = copied
	}

	roster = append([]string(nil), roster...)
	sort.Strings(roster)

	return &Graph{edges: edges, members: roster}, nil
}
