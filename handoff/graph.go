package handoff

import (
	"github.com/hupe1980/agentcrew/core"
)

// Graph is the immutable, roster-validated set of allowed transfers.
// It is safe for concurrent use.
type Graph struct {
	edges   map[string]map[string]string
	members []string // sorted roster
}

// Allowed reports whether source may transfer to target.
func (g *Graph) Allowed(source, target string) bool {
	_, ok := g.edges[source][target]
	return ok
}

// Rationale returns the rationale configured for source -> target.
func (g *Graph) Rationale(source, target string) (string, bool) {
	r, ok := g.edges[source][target]
	return r, ok
}

// Targets returns the transfer options of source sorted by target name.
func (g *Graph) Targets(source string) []core.HandoffOption {
	targets := g.edges[source]
	opts := make([]core.HandoffOption, 0, len(targets))
	for _, target := range core.SortedKeys(targets) {
		opts = append(opts, core.HandoffOption{Target: target, Rationale: targets[target]})
	}
	return opts
}

// TargetNames returns the names reachable from source in sorted order.
func (g *Graph) TargetNames(source string) []string {
	return core.SortedKeys(g.edges[source])
}

// Has reports whether name belongs to the roster the graph was built for.
func (g *Graph) Has(name string) bool {
	for _, m := range g.members {
		if m == name {
			return true
		}
	}
	return false
}

// Len returns the number of edges.
func (g *Graph) Len() int {
	n := 0
	for _, targets := range g.edges {
		n += len(targets)
	}
	return n
}
