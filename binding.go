package quiver

import "context"

// Deps is the argument view a recipe receives while its operation executes.
// Strong dependencies are guaranteed present by the plan's topological
// invariant; weak dependencies may be absent and must go through Lookup.
type Deps interface {
	// Get returns the value for a declared strong dependency. Asking for a
	// key the binding never declared, or a weak key that was pruned, is an
	// engine-reported fault.
	Get(key Key) any

	// Lookup reports the value for key if it has been produced, either by an
	// earlier operation or by a parent locator.
	Lookup(key Key) (any, bool)
}

// ProviderFunc constructs a value from already-produced dependencies. It is
// the only place (together with effects and resource acquisition) where the
// engine may suspend.
type ProviderFunc func(ctx context.Context, deps Deps) (any, error)

// ResourceFunc acquires a value and returns the release action that gives it
// back. Releases run in reverse acquisition order on failure, cancellation,
// or locator close.
type ResourceFunc func(ctx context.Context, deps Deps) (value any, release func(ctx context.Context) error, err error)

// Dep is one dependency edge of a binding.
type Dep struct {
	Key  Key
	Weak bool
}

// On declares a strong dependency edge.
func On(key Key) Dep {
	return Dep{Key: key}
}

// OnWeak declares a weak dependency edge: it does not force the target into
// the built graph, does not constrain ordering, and never participates in a
// cycle.
func OnWeak(key Key) Dep {
	return Dep{Key: key, Weak: true}
}

type recipeKind uint8

const (
	recipeInstance recipeKind = iota
	recipeProvider
	recipeReference
	recipeEffect
	recipeResource

	// recipeSet is synthetic: graph preparation mints one per multi-bound
	// key, collecting the element keys.
	recipeSet
)

// Binding maps a key to the recipe that produces its value, plus the keys it
// depends on. Bindings are immutable values; the builder methods return
// modified copies.
type Binding struct {
	key      Key
	kind     recipeKind
	value    any
	provider ProviderFunc
	resource ResourceFunc
	source   Key
	deps     []Dep
	elements []Key
	element  bool
	proxy    ProxyFactory
}

// Instance binds key to a literal value.
func Instance(key Key, value any) Binding {
	return Binding{key: key, kind: recipeInstance, value: value}
}

// Provide binds key to a provider function over the given dependencies.
func Provide(key Key, provider ProviderFunc, deps ...Dep) Binding {
	return Binding{key: key, kind: recipeProvider, provider: provider, deps: deps}
}

// Refer binds key as an alias of source: the produced value is whatever
// source's operation stored.
func Refer(key Key, source Key) Binding {
	return Binding{key: key, kind: recipeReference, source: source, deps: []Dep{On(source)}}
}

// Effect binds key to a deferred computation whose result becomes the value.
// It differs from Provide only in failure classification.
func Effect(key Key, effect ProviderFunc, deps ...Dep) Binding {
	return Binding{key: key, kind: recipeEffect, provider: effect, deps: deps}
}

// Resource binds key to an acquire/release pair.
func Resource(key Key, resource ResourceFunc, deps ...Dep) Binding {
	return Binding{key: key, kind: recipeResource, resource: resource, deps: deps}
}

// AsElement marks the binding as one element of a multi-binding: all element
// bindings for the same key are merged into a single assembled slice.
func (b Binding) AsElement() Binding {
	b.element = true
	return b
}

// WithProxy annotates the binding as proxy-eligible. The factory builds the
// placeholder that stands in for this key inside a dependency cycle; without
// a factory the key cannot be proxied and cycles through it are unbreakable.
func (b Binding) WithProxy(factory ProxyFactory) Binding {
	b.proxy = factory
	return b
}

// strongDeps returns the keys of the binding's non-weak edges in declaration
// order.
func (b Binding) strongDeps() []Key {
	var keys []Key
	for _, d := range b.deps {
		if !d.Weak {
			keys = append(keys, d.Key)
		}
	}
	return keys
}
