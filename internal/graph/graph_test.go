package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph() *Graph[string] {
	return New[string](func(a, b string) bool { return a < b })
}

func TestAddEdgeCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b", false)
	g.AddEdge("a", "b", false)
	g.AddEdge("a", "b", true)

	assert.Len(t, g.Out("a"), 2)
	assert.True(t, g.HasEdge("a", "b"))
}

func TestRemoveEdgeDropsOnlyStrong(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b", false)
	g.AddEdge("a", "b", true)

	g.RemoveEdge("a", "b")

	assert.False(t, g.HasEdge("a", "b"))
	require.Len(t, g.Out("a"), 1)
	assert.True(t, g.Out("a")[0].Weak)
}

func TestTopoOrderRespectsDependencies(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	for _, n := range []string{"db", "cache", "service", "server"} {
		g.AddNode(n)
	}
	g.AddEdge("service", "db", false)
	g.AddEdge("service", "cache", false)
	g.AddEdge("server", "service", false)

	order, err := g.TopoOrder()
	require.NoError(t, err)
	require.Len(t, order, 4)

	pos := make(map[string]int, len(order))
	for i, k := range order {
		pos[k] = i
	}
	assert.Less(t, pos["db"], pos["service"])
	assert.Less(t, pos["cache"], pos["service"])
	assert.Less(t, pos["service"], pos["server"])
}

// TestTopoOrderDeterministicTieBreak verifies independent nodes come out in
// key order regardless of insertion order.
func TestTopoOrderDeterministicTieBreak(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	for _, n := range []string{"c", "a", "b"} {
		g.AddNode(n)
	}

	order, err := g.TopoOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestTopoOrderRejectsCycle(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b", false)
	g.AddEdge("b", "a", false)

	_, err := g.TopoOrder()
	assert.ErrorIs(t, err, ErrCycle)
}

func TestTopoOrderIgnoresWeakEdges(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b", true)
	g.AddEdge("b", "a", false)

	order, err := g.TopoOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestSCCsFindMutualCycle(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	for _, n := range []string{"a", "b", "c"} {
		g.AddNode(n)
	}
	g.AddEdge("a", "b", false)
	g.AddEdge("b", "a", false)
	g.AddEdge("c", "a", false)

	cyclic := g.CyclicSCCs()
	require.Len(t, cyclic, 1)
	assert.Equal(t, []string{"a", "b"}, cyclic[0])
	assert.True(t, g.HasCycle())
}

func TestSCCsSelfLoop(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	g.AddNode("a")
	g.AddEdge("a", "a", false)

	cyclic := g.CyclicSCCs()
	require.Len(t, cyclic, 1)
	assert.Equal(t, []string{"a"}, cyclic[0])
}

func TestSCCsWeakEdgeBreaksNoCycle(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b", false)
	g.AddEdge("b", "a", true)

	assert.Empty(t, g.CyclicSCCs())
	assert.False(t, g.HasCycle())
}

func TestSCCsMultipleComponentsOrdered(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	for _, n := range []string{"a", "b", "x", "y"} {
		g.AddNode(n)
	}
	g.AddEdge("x", "y", false)
	g.AddEdge("y", "x", false)
	g.AddEdge("a", "b", false)
	g.AddEdge("b", "a", false)

	cyclic := g.CyclicSCCs()
	require.Len(t, cyclic, 2)
	assert.Equal(t, []string{"a", "b"}, cyclic[0])
	assert.Equal(t, []string{"x", "y"}, cyclic[1])
}

func TestReachableFollowsStrongEdgesOnly(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	for _, n := range []string{"root", "dep", "weakdep", "orphan"} {
		g.AddNode(n)
	}
	g.AddEdge("root", "dep", false)
	g.AddEdge("root", "weakdep", true)

	reached := g.Reachable([]string{"root"})
	assert.Contains(t, reached, "root")
	assert.Contains(t, reached, "dep")
	assert.NotContains(t, reached, "weakdep")
	assert.NotContains(t, reached, "orphan")
}

func TestPruneToDropsDanglingEdges(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	for _, n := range []string{"a", "b", "c"} {
		g.AddNode(n)
	}
	g.AddEdge("a", "b", false)
	g.AddEdge("a", "c", false)

	g.PruneTo(map[string]struct{}{"a": {}, "b": {}})

	assert.Equal(t, []string{"a", "b"}, g.Nodes())
	assert.Equal(t, []string{"b"}, g.StrongTargets("a"))
}

// TestPruneIdempotent verifies pruning an already-pruned graph to the same
// seeds changes nothing.
func TestPruneIdempotent(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	for _, n := range []string{"a", "b", "c", "d"} {
		g.AddNode(n)
	}
	g.AddEdge("a", "b", false)
	g.AddEdge("c", "d", false)

	g.PruneTo(g.Reachable([]string{"a"}))
	first := g.Clone()
	g.PruneTo(g.Reachable([]string{"a"}))

	assert.Equal(t, first.Nodes(), g.Nodes())
	for _, k := range first.Nodes() {
		assert.Equal(t, first.Out(k), g.Out(k))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	g := newTestGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b", false)

	clone := g.Clone()
	clone.RemoveEdge("a", "b")

	assert.True(t, g.HasEdge("a", "b"))
	assert.False(t, clone.HasEdge("a", "b"))
}
