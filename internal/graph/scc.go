package graph

type sccState[K comparable] struct {
	graph   *Graph[K]
	index   int
	stack   []K
	onStack map[K]bool
	indices map[K]int
	lowlink map[K]int
	sccs    [][]K
}

// SCCs computes the strongly connected components over strong edges using
// Tarjan's algorithm. Nodes are visited in key order, and each component's
// members are returned sorted, so the result is deterministic.
func (g *Graph[K]) SCCs() [][]K {
	state := &sccState[K]{
		graph:   g,
		onStack: make(map[K]bool, len(g.nodes)),
		indices: make(map[K]int, len(g.nodes)),
		lowlink: make(map[K]int, len(g.nodes)),
	}

	for _, k := range g.Nodes() {
		if _, visited := state.indices[k]; !visited {
			state.strongConnect(k)
		}
	}

	for _, scc := range state.sccs {
		g.Sort(scc)
	}
	return state.sccs
}

func (s *sccState[K]) strongConnect(k K) {
	s.indices[k] = s.index
	s.lowlink[k] = s.index
	s.index++
	s.stack = append(s.stack, k)
	s.onStack[k] = true

	for _, dep := range s.graph.StrongTargets(k) {
		if _, visited := s.indices[dep]; !visited {
			s.strongConnect(dep)
			s.lowlink[k] = min(s.lowlink[k], s.lowlink[dep])
		} else if s.onStack[dep] {
			s.lowlink[k] = min(s.lowlink[k], s.indices[dep])
		}
	}

	if s.lowlink[k] == s.indices[k] {
		var scc []K
		for {
			n := len(s.stack) - 1
			w := s.stack[n]
			s.stack = s.stack[:n]
			s.onStack[w] = false
			scc = append(scc, w)
			if w == k {
				break
			}
		}
		s.sccs = append(s.sccs, scc)
	}
}

// CyclicSCCs returns only the components that contain a cycle: size greater
// than one, or a single node with a strong self-loop. Components are ordered
// by their smallest member.
func (g *Graph[K]) CyclicSCCs() [][]K {
	var cyclic [][]K
	for _, scc := range g.SCCs() {
		if len(scc) > 1 {
			cyclic = append(cyclic, scc)
			continue
		}
		if g.HasEdge(scc[0], scc[0]) {
			cyclic = append(cyclic, scc)
		}
	}
	sortSCCs(g, cyclic)
	return cyclic
}

func sortSCCs[K comparable](g *Graph[K], sccs [][]K) {
	for i := 1; i < len(sccs); i++ {
		for j := i; j > 0 && g.less(sccs[j][0], sccs[j-1][0]); j-- {
			sccs[j], sccs[j-1] = sccs[j-1], sccs[j]
		}
	}
}

// HasCycle reports whether any strong-edge cycle exists.
func (g *Graph[K]) HasCycle() bool {
	return len(g.CyclicSCCs()) > 0
}
