package graph

// Reachable returns the set of nodes reachable from seeds over strong edges.
// Weak edges never pull a target in by themselves. Seeds missing from the
// graph are ignored.
func (g *Graph[K]) Reachable(seeds []K) map[K]struct{} {
	reached := make(map[K]struct{}, len(g.nodes))
	var frontier []K

	for _, k := range seeds {
		if !g.HasNode(k) {
			continue
		}
		if _, ok := reached[k]; ok {
			continue
		}
		reached[k] = struct{}{}
		frontier = append(frontier, k)
	}

	for len(frontier) > 0 {
		k := frontier[0]
		frontier = frontier[1:]
		for _, dep := range g.StrongTargets(k) {
			if _, ok := reached[dep]; ok {
				continue
			}
			reached[dep] = struct{}{}
			frontier = append(frontier, dep)
		}
	}

	return reached
}

// PruneTo removes every node outside keep, along with its edges. Edges from
// kept nodes to removed nodes are dropped as well.
func (g *Graph[K]) PruneTo(keep map[K]struct{}) {
	for k := range g.nodes {
		if _, ok := keep[k]; !ok {
			delete(g.nodes, k)
			delete(g.out, k)
		}
	}
	for k, edges := range g.out {
		kept := edges[:0]
		for _, e := range edges {
			if _, ok := keep[e.To]; ok {
				kept = append(kept, e)
			}
		}
		g.out[k] = kept
	}
}
