package quiver

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota

	// Planning-time failures. Fatal to the planning attempt, never retried.
	ErrCodeUnresolvedDependency
	ErrCodeMissingBinding
	ErrCodeConflictingBinding
	ErrCodeUnbreakableCycle
	ErrCodeProxyUnsupported

	// Provisioning-time failures. Fatal to the pass; already-acquired
	// resources are released in reverse order before these surface.
	ErrCodeProviderFailure
	ErrCodeEffectFailure
	ErrCodeResourceFailure
	ErrCodeProxyInitFailure
	ErrCodeCancelled

	ErrCodeReleaseFailure
	ErrCodeKeyNotFound

	// ErrCodeInternal marks engine invariant violations, as opposed to
	// failures inside user recipes.
	ErrCodeInternal
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:              "UNKNOWN",
	ErrCodeUnresolvedDependency: "UNRESOLVED_DEPENDENCY",
	ErrCodeMissingBinding:       "MISSING_BINDING",
	ErrCodeConflictingBinding:   "CONFLICTING_BINDING",
	ErrCodeUnbreakableCycle:     "UNBREAKABLE_CYCLE",
	ErrCodeProxyUnsupported:     "PROXY_UNSUPPORTED",
	ErrCodeProviderFailure:      "PROVIDER_FAILURE",
	ErrCodeEffectFailure:        "EFFECT_FAILURE",
	ErrCodeResourceFailure:      "RESOURCE_ACQUISITION_FAILURE",
	ErrCodeProxyInitFailure:     "PROXY_INIT_FAILURE",
	ErrCodeCancelled:            "CANCELLED",
	ErrCodeReleaseFailure:       "RELEASE_FAILURE",
	ErrCodeKeyNotFound:          "KEY_NOT_FOUND",
	ErrCodeInternal:             "INTERNAL",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// Error is the typed failure surfaced by planning and provisioning. Chain
// carries the offending key sequence for planning errors (an SCC's members,
// or the edge that could not be resolved).
type Error struct {
	Code    ErrorCode
	Message string
	Key     Key
	Chain   []Key
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if !e.Key.IsZero() {
		b.WriteString(fmt.Sprintf(" key=%q:", e.Key))
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if len(e.Chain) > 0 {
		parts := make([]string, len(e.Chain))
		for i, k := range e.Chain {
			parts[i] = k.String()
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, " -> "))
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func (e *Error) withKey(key Key) *Error {
	e.Key = key
	return e
}

func (e *Error) withChain(chain []Key) *Error {
	e.Chain = chain
	return e
}

func errUnresolvedDependency(key, missing Key) *Error {
	return newError(
		ErrCodeUnresolvedDependency,
		fmt.Sprintf("dependency %s has no binding and is not importable", missing),
		nil,
	).withKey(key).withChain([]Key{key, missing})
}

func errMissingBinding(key Key, role string) *Error {
	return newError(
		ErrCodeMissingBinding,
		fmt.Sprintf("no binding for %s %s", role, key),
		nil,
	).withKey(key)
}

func errConflictingBinding(key Key) *Error {
	return newError(
		ErrCodeConflictingBinding,
		"key is bound both as a set element and as a plain binding",
		nil,
	).withKey(key)
}

func errUnbreakableCycle(members []Key, cause error) *Error {
	return newError(
		ErrCodeUnbreakableCycle,
		"dependency cycle cannot be broken",
		cause,
	).withChain(members)
}

func errProxyUnsupported(key Key) *Error {
	return newError(
		ErrCodeProxyUnsupported,
		"key has no proxy factory and cannot stand behind a placeholder",
		nil,
	).withKey(key)
}

func errProviderFailure(key Key, cause error) *Error {
	return newError(ErrCodeProviderFailure, "provider failed", cause).withKey(key)
}

func errEffectFailure(key Key, cause error) *Error {
	return newError(ErrCodeEffectFailure, "effect failed", cause).withKey(key)
}

func errResourceFailure(key Key, cause error) *Error {
	return newError(ErrCodeResourceFailure, "resource acquisition failed", cause).withKey(key)
}

func errProxyInitFailure(key Key) *Error {
	return newError(
		ErrCodeProxyInitFailure,
		"proxy target was never constructed",
		nil,
	).withKey(key)
}

func errCancelled(cause error) *Error {
	return newError(ErrCodeCancelled, "provisioning cancelled", cause)
}

func errReleaseFailure(cause error) *Error {
	return newError(ErrCodeReleaseFailure, "resource release failed", cause)
}

func errKeyNotFound(key Key) *Error {
	return newError(ErrCodeKeyNotFound, "key not present in locator", nil).withKey(key)
}

func errInternal(message string, key Key) *Error {
	return newError(ErrCodeInternal, message, nil).withKey(key)
}

// isCode walks the whole unwrap chain, so nested engine errors (a cause
// inside an aggregate) match their code too.
func isCode(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}

func IsUnresolvedDependency(err error) bool { return isCode(err, ErrCodeUnresolvedDependency) }

func IsMissingBinding(err error) bool { return isCode(err, ErrCodeMissingBinding) }

func IsConflictingBinding(err error) bool { return isCode(err, ErrCodeConflictingBinding) }

func IsUnbreakableCycle(err error) bool { return isCode(err, ErrCodeUnbreakableCycle) }

func IsProxyUnsupported(err error) bool { return isCode(err, ErrCodeProxyUnsupported) }

func IsProviderFailure(err error) bool { return isCode(err, ErrCodeProviderFailure) }

func IsEffectFailure(err error) bool { return isCode(err, ErrCodeEffectFailure) }

func IsResourceFailure(err error) bool { return isCode(err, ErrCodeResourceFailure) }

func IsProxyInitFailure(err error) bool { return isCode(err, ErrCodeProxyInitFailure) }

func IsCancelled(err error) bool { return isCode(err, ErrCodeCancelled) }

func IsReleaseFailure(err error) bool { return isCode(err, ErrCodeReleaseFailure) }

func IsKeyNotFound(err error) bool { return isCode(err, ErrCodeKeyNotFound) }

func IsInternal(err error) bool { return isCode(err, ErrCodeInternal) }
