package graph

import (
	"errors"
	"sort"
)

var ErrCycle = errors.New("graph: cycle prevents topological order")

// TopoOrder linearizes the graph over strong edges: every node appears after
// all of its strong dependencies. When several nodes are ready at once the
// smallest key is emitted first, so the order is total and deterministic.
func (g *Graph[K]) TopoOrder() ([]K, error) {
	dependents := make(map[K][]K, len(g.nodes))
	inDegree := make(map[K]int, len(g.nodes))

	for k := range g.nodes {
		inDegree[k] = 0
	}

	for k := range g.nodes {
		for _, dep := range g.StrongTargets(k) {
			dependents[dep] = append(dependents[dep], k)
			inDegree[k]++
		}
	}

	var ready []K
	for k, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, k)
		}
	}
	g.Sort(ready)

	sorted := make([]K, 0, len(g.nodes))
	for len(ready) > 0 {
		k := ready[0]
		ready = ready[1:]
		sorted = append(sorted, k)

		for _, dependent := range dependents[k] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = insertOrdered(g, ready, dependent)
			}
		}
	}

	if len(sorted) != len(g.nodes) {
		return nil, ErrCycle
	}

	return sorted, nil
}

func insertOrdered[K comparable](g *Graph[K], ready []K, k K) []K {
	i := sort.Search(len(ready), func(i int) bool { return g.less(k, ready[i]) })
	ready = append(ready, k)
	copy(ready[i+1:], ready[i:])
	ready[i] = k
	return ready
}
