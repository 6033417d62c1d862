// Package graph implements the dependency multigraph primitives used by the
// planner: strong/weak edges, Tarjan strongly connected components, Kahn
// topological ordering with a deterministic tie-break, and roots reachability.
//
// The package is generic over the key type. Callers supply a strict ordering
// so that every traversal is deterministic for a fixed input graph.
package graph

import "sort"

// Edge is a directed dependency edge. Weak edges do not constrain ordering,
// do not participate in cycle detection, and do not pull their target into
// the reachable set.
type Edge[K comparable] struct {
	From K
	To   K
	Weak bool
}

type Graph[K comparable] struct {
	less  func(a, b K) bool
	nodes map[K]struct{}
	out   map[K][]Edge[K]
}

func New[K comparable](less func(a, b K) bool) *Graph[K] {
	return &Graph[K]{
		less:  less,
		nodes: make(map[K]struct{}),
		out:   make(map[K][]Edge[K]),
	}
}

func (g *Graph[K]) AddNode(k K) {
	g.nodes[k] = struct{}{}
}

// AddEdge records a dependency edge. Duplicate edges (same endpoints and
// weakness) collapse into one.
func (g *Graph[K]) AddEdge(from, to K, weak bool) {
	for _, e := range g.out[from] {
		if e.To == to && e.Weak == weak {
			return
		}
	}
	g.out[from] = append(g.out[from], Edge[K]{From: from, To: to, Weak: weak})
}

// RemoveEdge drops the strong edge from -> to, if present.
func (g *Graph[K]) RemoveEdge(from, to K) {
	edges := g.out[from]
	for i, e := range edges {
		if e.To == to && !e.Weak {
			g.out[from] = append(edges[:i:i], edges[i+1:]...)
			return
		}
	}
}

func (g *Graph[K]) HasNode(k K) bool {
	_, ok := g.nodes[k]
	return ok
}

func (g *Graph[K]) HasEdge(from, to K) bool {
	for _, e := range g.out[from] {
		if e.To == to && !e.Weak {
			return true
		}
	}
	return false
}

func (g *Graph[K]) Len() int {
	return len(g.nodes)
}

// Nodes returns every node in key order.
func (g *Graph[K]) Nodes() []K {
	nodes := make([]K, 0, len(g.nodes))
	for k := range g.nodes {
		nodes = append(nodes, k)
	}
	g.Sort(nodes)
	return nodes
}

// Out returns the outgoing edges of k, targets in key order, strong before
// weak for equal targets.
func (g *Graph[K]) Out(k K) []Edge[K] {
	edges := make([]Edge[K], len(g.out[k]))
	copy(edges, g.out[k])
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].To != edges[j].To {
			return g.less(edges[i].To, edges[j].To)
		}
		return !edges[i].Weak && edges[j].Weak
	})
	return edges
}

// StrongTargets returns the targets of k's strong edges, in key order,
// skipping targets missing from the graph.
func (g *Graph[K]) StrongTargets(k K) []K {
	var targets []K
	for _, e := range g.Out(k) {
		if e.Weak {
			continue
		}
		if _, ok := g.nodes[e.To]; !ok {
			continue
		}
		targets = append(targets, e.To)
	}
	return targets
}

func (g *Graph[K]) Clone() *Graph[K] {
	clone := New[K](g.less)
	for k := range g.nodes {
		clone.nodes[k] = struct{}{}
	}
	for k, edges := range g.out {
		cp := make([]Edge[K], len(edges))
		copy(cp, edges)
		clone.out[k] = cp
	}
	return clone
}

func (g *Graph[K]) Sort(keys []K) {
	sort.Slice(keys, func(i, j int) bool { return g.less(keys[i], keys[j]) })
}
