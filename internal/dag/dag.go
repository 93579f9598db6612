// SPDX-License-Identifier: MPL-2.0

// Package dag orders module loads. The dependency graph builder feeds
// it one node per module record and one edge per declared dependency;
// the resulting topological order guarantees that every dependency is
// fully loaded before anything that depends on it.
package dag

import (
	"fmt"
	"strings"
)

type (
	// CycleError indicates the graph cannot be ordered because modules
	// depend on each other, directly or through intermediaries.
	CycleError struct {
		// Nodes are members of the unorderable remainder, in insertion
		// order. The graph builder usually reports a richer cycle path
		// before this error is ever reached; CycleError is the backstop
		// for graphs assembled outside the builder.
		Nodes []string
	}

	// Graph is a directed graph over module identities. An edge from
	// dependency to dependent means "must finish loading first".
	Graph struct {
		// dependents maps each node to the nodes that require it.
		dependents map[string][]string
		// order tracks insertion order so load order is deterministic.
		order []string
		// seen provides O(1) node existence checks.
		seen map[string]bool
	}
)

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("modules form a dependency cycle: %s", strings.Join(e.Nodes, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		dependents: make(map[string][]string),
		seen:       make(map[string]bool),
	}
}

// Add inserts a node. Re-adding an existing node is a no-op.
func (g *Graph) Add(id string) {
	if g.seen[id] {
		return
	}
	g.seen[id] = true
	g.order = append(g.order, id)
}

// Depend records that dependent requires dependency, implicitly adding
// both nodes.
func (g *Graph) Depend(dependent, dependency string) {
	g.Add(dependency)
	g.Add(dependent)
	g.dependents[dependency] = append(g.dependents[dependency], dependent)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// LoadOrder returns a topological order in which every dependency
// strictly precedes its dependents (Kahn's algorithm). Nodes at the
// same depth come out in insertion order, so repeated builds of the
// same graph load identically.
func (g *Graph) LoadOrder() ([]string, error) {
	if len(g.order) == 0 {
		return nil, nil
	}

	pending := make(map[string]int, len(g.order))
	for _, id := range g.order {
		pending[id] = 0
	}
	for _, deps := range g.dependents {
		for _, dependent := range deps {
			pending[dependent]++
		}
	}

	queue := make([]string, 0, len(g.order))
	for _, id := range g.order {
		if pending[id] == 0 {
			queue = append(queue, id)
		}
	}

	var loadable []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		loadable = append(loadable, id)

		for _, dependent := range g.dependents[id] {
			pending[dependent]--
			if pending[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(loadable) != len(g.order) {
		var stuck []string
		for _, id := range g.order {
			if pending[id] > 0 {
				stuck = append(stuck, id)
			}
		}
		return nil, &CycleError{Nodes: stuck}
	}

	return loadable, nil
}
