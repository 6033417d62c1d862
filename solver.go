package quiver

import (
	"github.com/quiver-di/quiver/internal/graph"
)

// solve removes cycles from the prepared graph by cutting edges and recording
// a proxy break for each cut. It returns the acyclic residual graph and the
// breaks made, leaving the prepared graph untouched.
//
// Cut selection, per cyclic SCC:
//  1. candidates are in-SCC strong edges whose target carries a proxy
//     factory; an SCC with no candidate is unbreakable,
//  2. among candidates, edges whose source is also proxy-annotated are
//     preferred,
//  3. then the cut leaving the fewest keys inside cyclic SCCs,
//  4. then (From, To) key order.
//
// Tarjan reruns after every cut; one SCC can need several breaks.
func solve(p *prepared, allowProxies bool) (*graph.Graph[Key], []Break, error) {
	g := p.graph.Clone()
	var breaks []Break

	for {
		cyclic := g.CyclicSCCs()
		if len(cyclic) == 0 {
			return g, breaks, nil
		}

		scc := cyclic[0]
		if !allowProxies {
			return nil, nil, errUnbreakableCycle(scc, nil)
		}

		edge, err := chooseCut(p, g, scc)
		if err != nil {
			return nil, nil, err
		}

		breaks = append(breaks, Break{From: edge.From, To: edge.To})
		g.RemoveEdge(edge.From, edge.To)
	}
}

func chooseCut(p *prepared, g *graph.Graph[Key], scc []Key) (graph.Edge[Key], error) {
	members := make(map[Key]struct{}, len(scc))
	for _, k := range scc {
		members[k] = struct{}{}
	}

	var candidates []graph.Edge[Key]
	sawInnerEdge := false
	for _, from := range scc {
		for _, e := range g.Out(from) {
			if e.Weak {
				continue
			}
			if _, in := members[e.To]; !in {
				continue
			}
			sawInnerEdge = true
			if p.bindings[e.To].proxy != nil {
				candidates = append(candidates, e)
			}
		}
	}

	if len(candidates) == 0 {
		if !sawInnerEdge {
			return graph.Edge[Key]{}, errInternal("cyclic component has no internal edges", scc[0])
		}
		return graph.Edge[Key]{}, errUnbreakableCycle(scc, errProxyUnsupported(scc[0]))
	}

	// Annotated sources first.
	var preferred []graph.Edge[Key]
	for _, e := range candidates {
		if p.bindings[e.From].proxy != nil {
			preferred = append(preferred, e)
		}
	}
	if len(preferred) > 0 {
		candidates = preferred
	}

	best := candidates[0]
	bestScore := cutScore(g, best)
	for _, e := range candidates[1:] {
		score := cutScore(g, e)
		switch {
		case score < bestScore:
			best, bestScore = e, score
		case score == bestScore && edgeLess(e, best):
			best = e
		}
	}
	return best, nil
}

// cutScore counts the keys still trapped in cyclic SCCs after removing the
// edge; lower is better.
func cutScore(g *graph.Graph[Key], e graph.Edge[Key]) int {
	trial := g.Clone()
	trial.RemoveEdge(e.From, e.To)

	score := 0
	for _, scc := range trial.CyclicSCCs() {
		score += len(scc)
	}
	return score
}

func edgeLess(a, b graph.Edge[Key]) bool {
	if a.From != b.From {
		return a.From.Less(b.From)
	}
	return a.To.Less(b.To)
}
