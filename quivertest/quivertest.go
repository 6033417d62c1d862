// Package quivertest provides helpers for exercising plans and locators in
// tests: failures become fatal test errors, and produced locators are closed
// automatically via test cleanup.
package quivertest

import (
	"context"

	"github.com/quiver-di/quiver"
)

type TB interface {
	Helper()
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

// MustCompile compiles the bindings or fails the test.
func MustCompile(tb TB, bindings []quiver.Binding, roots quiver.Roots, opts ...quiver.PlanOption) *quiver.Plan {
	tb.Helper()

	plan, err := quiver.Compile(bindings, roots, opts...)
	if err != nil {
		tb.Fatalf("failed to compile plan: %v", err)
	}
	return plan
}

// MustProduce executes the plan or fails the test. The locator is closed on
// test cleanup; a close failure fails the test too.
func MustProduce(tb TB, ctx context.Context, plan *quiver.Plan, opts ...quiver.ProduceOption) *quiver.Locator {
	tb.Helper()

	loc, err := quiver.Produce(ctx, plan, opts...)
	if err != nil {
		tb.Fatalf("failed to produce locator: %v", err)
	}

	tb.Cleanup(func() {
		if err := loc.Close(context.Background()); err != nil {
			tb.Fatalf("failed to close locator: %v", err)
		}
	})

	return loc
}

// MustGet returns the value for key asserted to T, or fails the test.
func MustGet[T any](tb TB, loc *quiver.Locator, key quiver.Key) T {
	tb.Helper()

	value, err := quiver.Get[T](loc, key)
	if err != nil {
		tb.Fatalf("failed to get %s: %v", key, err)
	}
	return value
}

// RequireKey fails the test unless the locator (or its parent chain) holds
// key.
func RequireKey(tb TB, loc *quiver.Locator, key quiver.Key) {
	tb.Helper()

	if !loc.Has(key) {
		tb.Fatalf("expected locator to have %s", key)
	}
}

// RequireNoKey fails the test if the locator holds key.
func RequireNoKey(tb TB, loc *quiver.Locator, key quiver.Key) {
	tb.Helper()

	if loc.Has(key) {
		tb.Fatalf("expected locator to not have %s", key)
	}
}
