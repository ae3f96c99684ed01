// Package orchestrator drives the handoff-based routing of a content
// generation workflow across the agent roster.
package orchestrator

import (
	"fmt"
	"sort"

	"server/internal/agents"
)

// Edge is one directed handoff relation between two agent names.
type Edge struct {
	From string
	To   string
}

// Graph is the static set of allowed handoffs. It is built once at startup
// and never mutated afterwards.
type Graph struct {
	edges map[string]map[string]struct{}
}

// NewGraph builds a graph from explicit edges.
func NewGraph(edges ...Edge) Graph {
	g := Graph{edges: make(map[string]map[string]struct{})}
	for _, e := range edges {
		if g.edges[e.From] == nil {
			g.edges[e.From] = make(map[string]struct{})
		}
		g.edges[e.From][e.To] = struct{}{}
	}
	return g
}

// DefaultGraph connects the coordinator to every specialist and every
// specialist back to the coordinator.
func DefaultGraph() Graph {
	specialists := []string{
		agents.NamePlanning,
		agents.NameResearch,
		agents.NameTextContent,
		agents.NameImageContent,
		agents.NameCompliance,
	}
	var edges []Edge
	for _, s := range specialists {
		edges = append(edges,
			Edge{From: agents.NameCoordinator, To: s},
			Edge{From: s, To: agents.NameCoordinator},
		)
	}
	return NewGraph(edges...)
}

// Allowed reports whether from may hand control to to.
func (g Graph) Allowed(from, to string) bool {
	targets, ok := g.edges[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// Targets lists the allowed handoff targets for an agent, sorted by name.
func (g Graph) Targets(from string) []string {
	var out []string
	for to := range g.edges[from] {
		out = append(out, to)
	}
	sort.Strings(out)
	return out
}

// Validate checks the structural invariants: the coordinator reaches every
// specialist, and every specialist has a way back (no dead ends).
func (g Graph) Validate(coordinator string, specialists []string) error {
	if len(g.Targets(coordinator)) == 0 {
		return fmt.Errorf("orchestrator: coordinator %q has no outgoing edges", coordinator)
	}
	for _, s := range specialists {
		if !g.Allowed(coordinator, s) {
			return fmt.Errorf("orchestrator: coordinator cannot reach specialist %q", s)
		}
		if !g.Allowed(s, coordinator) {
			return fmt.Errorf("orchestrator: specialist %q is a dead end", s)
		}
	}
	return nil
}
