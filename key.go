package quiver

import (
	"fmt"
	"sort"

	ireflect "github.com/quiver-di/quiver/internal/reflect"
)

// Key identifies a bindable component: a type identity plus an optional
// qualifier. Keys are comparable, usable as map keys, and totally ordered so
// planning ties break deterministically. The engine never inspects the type
// behind a key; identity is whatever the caller derives.
type Key struct {
	typeName  string
	qualifier string

	// slot distinguishes the synthetic keys graph preparation mints for
	// merged set elements. Zero for caller-made keys.
	slot int
}

// NewKey builds a key from an externally computed type identity and an
// optional qualifier.
func NewKey(typeName, qualifier string) Key {
	return Key{typeName: typeName, qualifier: qualifier}
}

// KeyOf derives a key from the type T.
func KeyOf[T any]() Key {
	return Key{typeName: ireflect.TypeName[T]()}
}

// KeyOfNamed derives a qualified key from the type T and a name.
func KeyOfNamed[T any](name string) Key {
	return Key{typeName: ireflect.TypeName[T](), qualifier: name}
}

func (k Key) TypeName() string {
	return k.typeName
}

func (k Key) Qualifier() string {
	return k.qualifier
}

func (k Key) IsZero() bool {
	return k == Key{}
}

// Less imposes the total order used for deterministic tie-breaks.
func (k Key) Less(other Key) bool {
	if k.typeName != other.typeName {
		return k.typeName < other.typeName
	}
	if k.qualifier != other.qualifier {
		return k.qualifier < other.qualifier
	}
	return k.slot < other.slot
}

func (k Key) String() string {
	s := k.typeName
	if k.qualifier != "" {
		s += "#" + k.qualifier
	}
	if k.slot > 0 {
		s += fmt.Sprintf("[%d]", k.slot-1)
	}
	return s
}

// element mints the synthetic key for the i-th set element bound to k.
func (k Key) element(i int) Key {
	k.slot = i + 1
	return k
}

func keyLess(a, b Key) bool {
	return a.Less(b)
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
