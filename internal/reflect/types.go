package reflect

import (
	"reflect"
	"strconv"
	"sync"
)

var typeNameCache sync.Map

// TypeName returns a stable, human-readable identity for T, usable as the
// type component of a key. Interface types resolve to the interface itself,
// not a dynamic implementation.
func TypeName[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		t = reflect.TypeOf((*T)(nil)).Elem()
	}
	return typeNameFromReflect(t)
}

func TypeNameFromValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	return typeNameFromReflect(reflect.TypeOf(v))
}

func typeNameFromReflect(t reflect.Type) string {
	if cached, ok := typeNameCache.Load(t); ok {
		return cached.(string)
	}

	name := buildTypeName(t)
	typeNameCache.Store(t, name)
	return name
}

func buildTypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + buildTypeName(t.Elem())
	case reflect.Slice:
		return "[]" + buildTypeName(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + buildTypeName(t.Elem())
	case reflect.Map:
		return "map[" + buildTypeName(t.Key()) + "]" + buildTypeName(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + buildTypeName(t.Elem())
		case reflect.SendDir:
			return "chan<- " + buildTypeName(t.Elem())
		default:
			return "chan " + buildTypeName(t.Elem())
		}
	case reflect.Func:
		return t.String()
	default:
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		return t.Name()
	}
}

func IsInterface[T any]() bool {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return t.Kind() == reflect.Interface
}
