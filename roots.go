package quiver

// Roots selects which keys must survive graph pruning. Everything disables
// pruning; RootsOf keeps only the subgraph reachable from the given keys over
// strong edges, plus any forced roots and their transitive dependencies.
type Roots struct {
	everything bool
	keys       []Key
	forced     []Key
}

// Everything keeps every binding; no pruning happens.
func Everything() Roots {
	return Roots{everything: true}
}

// RootsOf keeps the given keys and whatever they transitively require.
func RootsOf(keys ...Key) Roots {
	return Roots{keys: append([]Key(nil), keys...)}
}

// WithForced adds keys that are kept regardless of whether anything depends
// on them.
func (r Roots) WithForced(keys ...Key) Roots {
	r.forced = append(append([]Key(nil), r.forced...), keys...)
	return r
}

// seeds returns all root keys, explicit and forced, in key order.
func (r Roots) seeds() []Key {
	seeds := make([]Key, 0, len(r.keys)+len(r.forced))
	seeds = append(seeds, r.keys...)
	seeds = append(seeds, r.forced...)
	sortKeys(seeds)
	return seeds
}
