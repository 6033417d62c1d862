package quiver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiver-di/quiver"
)

// refCell is the placeholder used by proxy-eligible test bindings; it simply
// exposes the backing cell.
type refCell struct {
	ref *quiver.Ref
}

func proxyable(key quiver.Key, deps ...quiver.Dep) quiver.Binding {
	return quiver.Provide(key, provideValue(key.String()), deps...).
		WithProxy(func(ref *quiver.Ref) any {
			return &refCell{ref: ref}
		})
}

// TestSolveMutualCycle covers the canonical two-key cycle: X depends on Y and
// Y on X, both proxy-eligible. The plan must contain MakeProxy(Y),
// Create(X, [Y]), InitProxy(Y) in that relative order (the X edge is cut
// first by key order).
func TestSolveMutualCycle(t *testing.T) {
	t.Parallel()

	x := quiver.NewKey("X", "")
	y := quiver.NewKey("Y", "")

	plan, err := quiver.Compile([]quiver.Binding{
		proxyable(x, quiver.On(y)),
		proxyable(y, quiver.On(x)),
	}, quiver.Everything())
	require.NoError(t, err)

	require.Equal(t, []string{
		"MakeProxy:Y",
		"CreateFromProvider:X",
		"CreateFromProvider:Y",
		"InitProxy:Y",
	}, opKeys(plan.Ops()))

	require.Equal(t, []quiver.Break{{From: x, To: y}}, plan.Breaks())
	require.NoError(t, plan.Verify())
}

func TestSolveSelfLoop(t *testing.T) {
	t.Parallel()

	a := quiver.NewKey("A", "")

	plan, err := quiver.Compile([]quiver.Binding{
		proxyable(a, quiver.On(a)),
	}, quiver.Everything())
	require.NoError(t, err)

	require.Equal(t, []string{
		"MakeProxy:A",
		"CreateFromProvider:A",
		"InitProxy:A",
	}, opKeys(plan.Ops()))
}

// TestSolveCycleSingleEligibleTarget verifies the cut lands on the only edge
// whose target can be proxied.
func TestSolveCycleSingleEligibleTarget(t *testing.T) {
	t.Parallel()

	a := quiver.NewKey("A", "")
	b := quiver.NewKey("B", "")
	c := quiver.NewKey("C", "")

	plan, err := quiver.Compile([]quiver.Binding{
		quiver.Provide(a, provideValue("a"), quiver.On(b)),
		proxyable(b, quiver.On(c)),
		quiver.Provide(c, provideValue("c"), quiver.On(a)),
	}, quiver.Everything())
	require.NoError(t, err)

	require.Equal(t, []quiver.Break{{From: a, To: b}}, plan.Breaks())
	require.Equal(t, []string{
		"MakeProxy:B",
		"CreateFromProvider:A",
		"CreateFromProvider:C",
		"CreateFromProvider:B",
		"InitProxy:B",
	}, opKeys(plan.Ops()))
}

func TestSolveCycleNoProxyableMemberFails(t *testing.T) {
	t.Parallel()

	a := quiver.NewKey("A", "")
	b := quiver.NewKey("B", "")

	_, err := quiver.Compile([]quiver.Binding{
		quiver.Provide(a, provideValue("a"), quiver.On(b)),
		quiver.Provide(b, provideValue("b"), quiver.On(a)),
	}, quiver.Everything())

	require.Error(t, err)
	assert.True(t, quiver.IsUnbreakableCycle(err))
	assert.True(t, quiver.IsProxyUnsupported(err)) // cause chain names the unproxyable key

	var typed *quiver.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, []quiver.Key{a, b}, typed.Chain)
}

func TestSolveWithoutProxiesFailsFast(t *testing.T) {
	t.Parallel()

	a := quiver.NewKey("A", "")
	b := quiver.NewKey("B", "")

	_, err := quiver.Compile([]quiver.Binding{
		proxyable(a, quiver.On(b)),
		proxyable(b, quiver.On(a)),
	}, quiver.Everything(), quiver.WithoutProxies())

	require.Error(t, err)
	assert.True(t, quiver.IsUnbreakableCycle(err))

	var typed *quiver.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, []quiver.Key{a, b}, typed.Chain)
}

// TestSolveOverlappingCycles needs more than one break: two cycles sharing a
// key cannot be untangled with a single cut here.
func TestSolveOverlappingCycles(t *testing.T) {
	t.Parallel()

	a := quiver.NewKey("A", "")
	b := quiver.NewKey("B", "")
	c := quiver.NewKey("C", "")

	// A <-> B and A <-> C, all proxy-eligible.
	plan, err := quiver.Compile([]quiver.Binding{
		proxyable(a, quiver.On(b), quiver.On(c)),
		proxyable(b, quiver.On(a)),
		proxyable(c, quiver.On(a)),
	}, quiver.Everything())
	require.NoError(t, err)

	require.NotEmpty(t, plan.Breaks())
	require.NoError(t, plan.Verify())

	// Every key still gets produced exactly once.
	creates := 0
	for _, op := range plan.Ops() {
		if op.Kind == quiver.OpCreateFromProvider {
			creates++
		}
	}
	assert.Equal(t, 3, creates)
}

// TestSolveWeakEdgeNeverCounts verifies a cycle closed only by a weak edge
// needs no break at all.
func TestSolveWeakEdgeNeverCounts(t *testing.T) {
	t.Parallel()

	a := quiver.NewKey("A", "")
	b := quiver.NewKey("B", "")

	plan, err := quiver.Compile([]quiver.Binding{
		quiver.Provide(a, provideValue("a"), quiver.On(b)),
		quiver.Provide(b, provideValue("b"), quiver.OnWeak(a)),
	}, quiver.Everything())
	require.NoError(t, err)

	assert.Empty(t, plan.Breaks())
	require.Equal(t, []string{
		"CreateFromProvider:B",
		"CreateFromProvider:A",
	}, opKeys(plan.Ops()))
}

// TestSolveDeterministicBreakChoice verifies repeated compilations choose the
// same cut when several candidates tie.
func TestSolveDeterministicBreakChoice(t *testing.T) {
	t.Parallel()

	x := quiver.NewKey("X", "")
	y := quiver.NewKey("Y", "")
	z := quiver.NewKey("Z", "")

	bindings := []quiver.Binding{
		proxyable(x, quiver.On(y)),
		proxyable(y, quiver.On(z)),
		proxyable(z, quiver.On(x)),
	}

	first, err := quiver.Compile(bindings, quiver.Everything())
	require.NoError(t, err)
	second, err := quiver.Compile(bindings, quiver.Everything())
	require.NoError(t, err)

	assert.Equal(t, first.Breaks(), second.Breaks())
	assert.Equal(t, opKeys(first.Ops()), opKeys(second.Ops()))
}

// TestSolvePreferAnnotatedSource: in the cycle A -> B -> C -> A only B and C
// are proxy-eligible, so the candidate cuts are A->B (plain source) and
// B->C (annotated source). Annotation priority must pick B->C even though
// plain key order favors A->B.
func TestSolvePreferAnnotatedSource(t *testing.T) {
	t.Parallel()

	a := quiver.NewKey("A", "")
	b := quiver.NewKey("B", "")
	c := quiver.NewKey("C", "")

	plan, err := quiver.Compile([]quiver.Binding{
		quiver.Provide(a, provideValue("a"), quiver.On(b)),
		proxyable(b, quiver.On(c)),
		proxyable(c, quiver.On(a)),
	}, quiver.Everything())
	require.NoError(t, err)

	require.Equal(t, []quiver.Break{{From: b, To: c}}, plan.Breaks())
	require.Equal(t, []string{
		"MakeProxy:C",
		"CreateFromProvider:B",
		"CreateFromProvider:A",
		"CreateFromProvider:C",
		"InitProxy:C",
	}, opKeys(plan.Ops()))
}
