package quiver

import (
	"github.com/quiver-di/quiver/internal/graph"
)

// emitOps linearizes the acyclic residual graph into the ordered operation
// sequence. Kahn's order (deterministic by key) drives creation steps;
// MakeProxy is emitted lazily, right before the first dependent that still
// needs the placeholder, and InitProxy directly after the real creation.
//
// A break whose residual ordering happens to place the target before the
// dependent needs no placeholder at all, so the pair is skipped.
func emitOps(p *prepared, residual *graph.Graph[Key], breaks []Break) ([]Op, error) {
	order, err := residual.TopoOrder()
	if err != nil {
		return nil, errInternal("residual graph is not acyclic after cycle breaking", Key{})
	}

	proxiedArgs := make(map[Key][]Key, len(breaks))
	for _, br := range breaks {
		proxiedArgs[br.From] = append(proxiedArgs[br.From], br.To)
	}
	for _, targets := range proxiedArgs {
		sortKeys(targets)
	}

	created := make(map[Key]bool, len(order))
	proxied := make(map[Key]bool, len(breaks))

	ops := make([]Op, 0, len(order))
	for _, key := range order {
		for _, target := range proxiedArgs[key] {
			if created[target] || proxied[target] {
				continue
			}
			ops = append(ops, Op{Kind: OpMakeProxy, Key: target})
			proxied[target] = true
		}

		ops = append(ops, creationOp(p.bindings[key]))
		created[key] = true

		if proxied[key] {
			ops = append(ops, Op{Kind: OpInitProxy, Key: key})
		}
	}

	if err := verifyOps(ops, p.imports); err != nil {
		return nil, err
	}
	return ops, nil
}

func creationOp(b Binding) Op {
	switch b.kind {
	case recipeInstance:
		return Op{Kind: OpCreateFromInstance, Key: b.key}
	case recipeProvider:
		return Op{Kind: OpCreateFromProvider, Key: b.key, Args: b.strongDeps()}
	case recipeReference:
		return Op{Kind: OpReferenceKey, Key: b.key, Source: b.source}
	case recipeEffect:
		return Op{Kind: OpExecuteEffect, Key: b.key, Args: b.strongDeps()}
	case recipeResource:
		return Op{Kind: OpAllocateResource, Key: b.key, Args: b.strongDeps()}
	case recipeSet:
		return Op{Kind: OpAssembleSet, Key: b.key, Elements: b.elements}
	default:
		return Op{Kind: OpCreateFromInstance, Key: b.key}
	}
}

// verifyOps checks the topological invariant: every strong argument of every
// operation is satisfied earlier in the sequence, by a real value, a
// placeholder, or a declared import. A violation is an engine fault.
func verifyOps(ops []Op, imports map[Key]struct{}) error {
	available := make(map[Key]bool, len(ops))
	created := make(map[Key]bool, len(ops))

	satisfied := func(k Key) bool {
		if available[k] {
			return true
		}
		_, imported := imports[k]
		return imported
	}

	for _, op := range ops {
		switch op.Kind {
		case OpMakeProxy:
			available[op.Key] = true
			continue
		case OpInitProxy:
			if !created[op.Key] {
				return errInternal("proxy initialized before its target was constructed", op.Key)
			}
			continue
		case OpReferenceKey:
			if !satisfied(op.Source) {
				return errInternal("reference source not satisfied earlier in the plan", op.Key)
			}
		case OpAssembleSet:
			for _, elem := range op.Elements {
				if !satisfied(elem) {
					return errInternal("set element not satisfied earlier in the plan", op.Key)
				}
			}
		default:
			for _, arg := range op.Args {
				if !satisfied(arg) {
					return errInternal("operation argument not satisfied earlier in the plan", op.Key)
				}
			}
		}
		available[op.Key] = true
		created[op.Key] = true
	}
	return nil
}
