package quiver

import (
	"context"
	"log/slog"
	"sync"
)

// Locator is the realized key-to-instance store a successful provisioning
// pass returns. It is read-only and safe for concurrent lookups. Lookups
// missing locally fall through to the parent chain; a child never mutates
// its parent.
type Locator struct {
	parent     *Locator
	store      map[Key]any
	finalizers []finalizer
	logger     *slog.Logger
	onRelease  []ReleaseHook

	mu     sync.Mutex
	closed bool
}

// Get returns the instance for key, consulting the parent chain on a local
// miss.
func (l *Locator) Get(key Key) (any, error) {
	if value, ok := l.store[key]; ok {
		return value, nil
	}
	if l.parent != nil {
		return l.parent.Get(key)
	}
	return nil, errKeyNotFound(key)
}

// MustGet is Get for wiring code that treats absence as a bug.
func (l *Locator) MustGet(key Key) any {
	value, err := l.Get(key)
	if err != nil {
		panic(err)
	}
	return value
}

// Get returns the instance for key asserted to T, consulting the parent
// chain on a local miss.
func Get[T any](l *Locator, key Key) (T, error) {
	value, err := l.Get(key)
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, errInternal("stored value has unexpected type", key)
	}
	return typed, nil
}

func (l *Locator) Has(key Key) bool {
	if _, ok := l.store[key]; ok {
		return true
	}
	return l.parent != nil && l.parent.Has(key)
}

// Keys returns the locator's own keys (not the parent's), in key order.
func (l *Locator) Keys() []Key {
	keys := make([]Key, 0, len(l.store))
	for k := range l.store {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func (l *Locator) Len() int {
	return len(l.store)
}

func (l *Locator) Parent() *Locator {
	return l.parent
}

// Close releases the locator's resources in reverse acquisition order. It is
// idempotent: only the first call runs finalizers. The parent's resources
// are untouched; close locators child-first.
func (l *Locator) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	if err := releaseAll(ctx, l.finalizers, l.logger, l.onRelease); err != nil {
		return errReleaseFailure(err)
	}
	return nil
}
