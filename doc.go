// Package quiver is a plan-based dependency-injection runtime: it turns a
// declarative binding list into a deterministic execution plan, then runs
// the plan to produce a live object graph with managed resource lifecycle.
//
// # Two phases
//
// Planning is pure and synchronous. Compile merges multi-bindings, applies
// last-wins overrides, prunes everything unreachable from the requested
// roots, breaks dependency cycles with proxy placeholders, and linearizes
// the rest into an ordered operation sequence:
//
//	plan, err := quiver.Compile(bindings, quiver.RootsOf(serverKey))
//
// Provisioning executes the plan. Produce walks the operations in order,
// invoking providers, running effects, and acquiring resources; on any
// failure (or cancellation) it releases already-acquired resources in
// reverse order before returning:
//
//	loc, err := quiver.Produce(ctx, plan)
//	defer loc.Close(ctx)
//
// # Bindings
//
// A binding maps a Key to a recipe plus its dependency edges:
//
//	cfgKey := quiver.KeyOf[*Config]()
//	dbKey := quiver.KeyOf[*Database]()
//
//	bindings := []quiver.Binding{
//	    quiver.Instance(cfgKey, cfg),
//	    quiver.Resource(dbKey, openDatabase, quiver.On(cfgKey)),
//	}
//
// Recipes: Instance (literal value), Provide (constructor), Refer (alias),
// Effect (deferred computation), Resource (acquire/release pair). Bindings
// flagged AsElement merge into one assembled slice per key. Weak edges
// (OnWeak) neither force a key into the built graph nor constrain ordering.
//
// # Cycles
//
// Mutually dependent keys are legal when at least one side is proxy-eligible
// (WithProxy). The planner breaks each cycle by handing the dependent a
// placeholder that forwards through a Ref cell, initialized once the real
// value exists. Cycles with no proxyable member, or any cycle when
// WithoutProxies is set, fail planning with an unbreakable-cycle error.
//
// # Hierarchy
//
// A plan may declare imported keys (WithImports) that a parent locator
// satisfies at produce time (WithParent). Children see parent values; the
// parent is never mutated. A completed locator is safe for concurrent reads.
package quiver
