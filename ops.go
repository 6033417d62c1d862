package quiver

import (
	"fmt"
	"strings"
)

type OpKind uint8

const (
	OpMakeProxy OpKind = iota
	OpInitProxy
	OpCreateFromProvider
	OpCreateFromInstance
	OpReferenceKey
	OpAssembleSet
	OpExecuteEffect
	OpAllocateResource
)

var opKindNames = map[OpKind]string{
	OpMakeProxy:          "MakeProxy",
	OpInitProxy:          "InitProxy",
	OpCreateFromProvider: "CreateFromProvider",
	OpCreateFromInstance: "CreateFromInstance",
	OpReferenceKey:       "ReferenceKey",
	OpAssembleSet:        "AssembleSet",
	OpExecuteEffect:      "ExecuteEffect",
	OpAllocateResource:   "AllocateResource",
}

func (k OpKind) String() string {
	if name, ok := opKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("OpKind(%d)", k)
}

// Op is one step of an execution plan. Args lists the strong dependency keys
// the step reads; Source is set for ReferenceKey, Elements for AssembleSet.
type Op struct {
	Kind     OpKind
	Key      Key
	Args     []Key
	Source   Key
	Elements []Key
}

func (o Op) String() string {
	switch o.Kind {
	case OpReferenceKey:
		return fmt.Sprintf("%s(%s <- %s)", o.Kind, o.Key, o.Source)
	case OpAssembleSet:
		return fmt.Sprintf("%s(%s, %s)", o.Kind, o.Key, joinKeys(o.Elements))
	default:
		if len(o.Args) > 0 {
			return fmt.Sprintf("%s(%s, [%s])", o.Kind, o.Key, joinKeys(o.Args))
		}
		return fmt.Sprintf("%s(%s)", o.Kind, o.Key)
	}
}

func joinKeys(keys []Key) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

// Break records one proxy indirection chosen by the cycle resolver: From now
// depends on a placeholder for To instead of on To directly.
type Break struct {
	From Key
	To   Key
}

func (b Break) String() string {
	return fmt.Sprintf("%s -/-> %s", b.From, b.To)
}
