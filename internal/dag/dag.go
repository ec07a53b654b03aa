// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed graph operations for topological sorting and
// cycle detection. The resolver uses it to order resolved packages so that every
// dependency precedes its dependents.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle is a closed path through the graph: the first node is repeated at
		// the end ("a", "b", "a").
		Cycle []string
	}

	// Graph is a directed graph for topological sorting.
	// Nodes are identified by string keys. Edges represent "must come before"
	// relationships: an edge from A to B means A is ordered ahead of B.
	Graph struct {
		// adjacency maps each node to its outgoing neighbors, in edge insertion order.
		adjacency map[string][]string
		// nodes tracks all nodes in insertion order; the position is the node's priority.
		nodes []string
		// index maps a node to its position in nodes.
		index map[string]int
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		index:     make(map[string]int),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.index[name]; ok {
		return
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, name)
}

// AddEdge adds a directed edge from -> to, meaning "from" is ordered before "to".
// Both nodes are implicitly added if they don't exist. Repeated edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if slices.Contains(g.adjacency[from], to) {
		return
	}
	g.adjacency[from] = append(g.adjacency[from], to)
}

// HasNode reports whether name is in the graph.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// Successors returns the outgoing neighbors of name in edge insertion order.
func (g *Graph) Successors(name string) []string {
	return slices.Clone(g.adjacency[name])
}

// TopologicalSort returns a valid ordering using Kahn's algorithm.
// Returns CycleError if the graph contains a cycle.
// Among nodes that are ready at the same time, the one added to the graph first
// is emitted first, so the order is deterministic and favors insertion order.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make([]int, len(g.nodes))
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[g.index[neighbor]]++
		}
	}

	// ready holds node indices sorted ascending.
	var ready []int
	for i := range g.nodes {
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		node := g.nodes[i]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			j := g.index[neighbor]
			inDegree[j]--
			if inDegree[j] == 0 {
				pos, _ := slices.BinarySearch(ready, j)
				ready = slices.Insert(ready, pos, j)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, &CycleError{Cycle: g.findCycle(inDegree)}
	}
	return result, nil
}

// findCycle extracts one concrete cycle from the nodes Kahn's pass could not
// emit. Every such node has an unresolved predecessor that is also stuck, so
// walking predecessors from any of them must revisit a node.
func (g *Graph) findCycle(inDegree []int) []string {
	stuck := func(name string) bool { return inDegree[g.index[name]] > 0 }

	preds := make(map[string][]string)
	for _, from := range g.nodes {
		if !stuck(from) {
			continue
		}
		for _, to := range g.adjacency[from] {
			if stuck(to) {
				preds[to] = append(preds[to], from)
			}
		}
	}

	var start string
	for _, node := range g.nodes {
		if stuck(node) {
			start = node
			break
		}
	}

	seen := make(map[string]int)
	var walk []string
	for node := start; ; node = preds[node][0] {
		if at, ok := seen[node]; ok {
			loop := slices.Clone(walk[at:])
			slices.Reverse(loop)
			// Rotate so the earliest-added node leads.
			first := 0
			for k, n := range loop {
				if g.index[n] < g.index[loop[first]] {
					first = k
				}
			}
			loop = append(loop[first:], loop[:first]...)
			return append(loop, loop[0])
		}
		seen[node] = len(walk)
		walk = append(walk, node)
	}
}
