package quiver

import (
	"fmt"
	"sync"
)

// Ref is the mutable cell behind a proxy placeholder. A MakeProxy operation
// creates the cell unresolved; the matching InitProxy fills it in once the
// real value exists. Placeholder methods delegate through the cell.
type Ref struct {
	mu       sync.RWMutex
	value    any
	resolved bool
}

// Resolved reports whether the backing value has been bound.
func (r *Ref) Resolved() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolved
}

// Lookup returns the backing value if it has been bound.
func (r *Ref) Lookup() (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value, r.resolved
}

// Value returns the backing value. Calling it before the cell resolves means
// a placeholder method ran during construction of the cycle it belongs to;
// that is a caller bug, and Value panics with a descriptive message.
func (r *Ref) Value() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.resolved {
		panic(fmt.Sprintf("quiver: proxy used before initialization (%T cell)", r))
	}
	return r.value
}

func (r *Ref) resolve(value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = value
	r.resolved = true
}

// ProxyFactory builds the placeholder standing in for a not-yet-constructed
// key. The returned value must satisfy the key's interface shape, forwarding
// every method through the cell:
//
//	quiver.Provide(dbKey, newDB, quiver.On(logKey)).WithProxy(func(ref *quiver.Ref) any {
//	    return &dbProxy{ref: ref}
//	})
//
// Keys whose shape cannot be expressed as an interface have no factory and
// are reported as unproxyable when a cycle needs them broken.
type ProxyFactory func(ref *Ref) any
