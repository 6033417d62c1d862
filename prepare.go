package quiver

import (
	"github.com/quiver-di/quiver/internal/graph"
)

// prepared is the well-formed dependency graph derived from the raw binding
// list: set elements merged, overrides applied, every edge validated.
type prepared struct {
	bindings map[Key]Binding
	graph    *graph.Graph[Key]
	imports  map[Key]struct{}
}

// prepare translates the ordered binding multiset into a dependency graph.
//
// Bindings flagged as set elements merge into one assemble-set binding per
// key, each element re-homed under a synthetic element key. For plain keys
// the last-registered binding wins, modeling layered configuration overrides.
func prepare(bindings []Binding, imports []Key) (*prepared, error) {
	plain := make(map[Key]Binding)
	elements := make(map[Key][]Binding)
	var order []Key // first-registration order of target keys, for stable element numbering

	for _, b := range bindings {
		if _, plainSeen := plain[b.key]; !plainSeen {
			if _, elemSeen := elements[b.key]; !elemSeen {
				order = append(order, b.key)
			}
		}
		if b.element {
			elements[b.key] = append(elements[b.key], b)
		} else {
			plain[b.key] = b
		}
	}

	merged := make(map[Key]Binding, len(plain)+len(elements))
	for _, key := range order {
		elems, isSet := elements[key]
		_, isPlain := plain[key]

		if isSet && isPlain {
			return nil, errConflictingBinding(key)
		}

		if !isSet {
			merged[key] = plain[key]
			continue
		}

		elementKeys := make([]Key, len(elems))
		for i, elem := range elems {
			elemKey := key.element(i)
			elem.key = elemKey
			elem.element = false
			merged[elemKey] = elem
			elementKeys[i] = elemKey
		}

		setDeps := make([]Dep, len(elementKeys))
		for i, ek := range elementKeys {
			setDeps[i] = On(ek)
		}
		merged[key] = Binding{
			key:      key,
			kind:     recipeSet,
			deps:     setDeps,
			elements: elementKeys,
		}
	}

	importSet := make(map[Key]struct{}, len(imports))
	for _, k := range imports {
		importSet[k] = struct{}{}
	}

	g := graph.New[Key](keyLess)
	for key := range merged {
		g.AddNode(key)
	}
	for _, key := range sortedBindingKeys(merged) {
		b := merged[key]
		for _, d := range b.deps {
			if _, bound := merged[d.Key]; !bound {
				if _, imported := importSet[d.Key]; !imported {
					return nil, errUnresolvedDependency(key, d.Key)
				}
				continue // satisfied by the parent locator; not a graph node
			}
			g.AddEdge(key, d.Key, d.Weak)
		}
	}

	return &prepared{bindings: merged, graph: g, imports: importSet}, nil
}

// prune drops every binding not reachable from the roots over strong edges.
// Forced roots and their transitive dependencies survive regardless of
// dependents. Weak edges never force inclusion by themselves.
func (p *prepared) prune(roots Roots) error {
	if roots.everything {
		return nil
	}

	seeds := roots.seeds()
	for _, k := range seeds {
		if _, ok := p.bindings[k]; ok {
			continue
		}
		if _, ok := p.imports[k]; ok {
			continue
		}
		return errMissingBinding(k, "root")
	}

	keep := p.graph.Reachable(seeds)
	p.graph.PruneTo(keep)
	for k := range p.bindings {
		if _, ok := keep[k]; !ok {
			delete(p.bindings, k)
		}
	}
	return nil
}

func sortedBindingKeys(bindings map[Key]Binding) []Key {
	keys := make([]Key, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}
