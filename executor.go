package quiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Produce executes the plan in order against a growing key-value store and
// returns the realized locator. On any failure, every resource acquired so
// far is released in reverse order before the error surfaces; the same holds
// when ctx is cancelled mid-pass. On success the finalizers transfer to the
// locator and run when the caller closes it.
func Produce(ctx context.Context, plan *Plan, opts ...ProduceOption) (*Locator, error) {
	cfg := &produceConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger.With("pass", uuid.NewString())

	for _, key := range sortedImportKeys(plan.imports) {
		if cfg.parent == nil || !cfg.parent.Has(key) {
			return nil, errMissingBinding(key, "imported key")
		}
	}

	ex := &executor{
		plan:    plan,
		parent:  cfg.parent,
		store:   make(map[Key]any, len(plan.ops)),
		refs:    make(map[Key]*Ref),
		created: make(map[Key]bool, len(plan.ops)),
		logger:  logger,
	}

	for _, op := range plan.ops {
		start := time.Now()
		err := ex.exec(ctx, op)
		for _, hook := range cfg.onOp {
			hook(op, time.Since(start), err)
		}
		if err != nil {
			unwindErr := releaseAll(context.WithoutCancel(ctx), ex.finalizers, logger, cfg.onRelease)
			if unwindErr != nil {
				var e *Error
				if errors.As(err, &e) {
					e.Cause = errors.Join(e.Cause, unwindErr)
				}
			}
			return nil, err
		}
	}

	logger.Debug("provisioning complete", "keys", len(ex.store), "resources", len(ex.finalizers))

	return &Locator{
		parent:     cfg.parent,
		store:      ex.store,
		finalizers: ex.finalizers,
		logger:     logger,
		onRelease:  cfg.onRelease,
	}, nil
}

type finalizer struct {
	key     Key
	release func(ctx context.Context) error
}

type executor struct {
	plan       *Plan
	parent     *Locator
	store      map[Key]any
	refs       map[Key]*Ref
	created    map[Key]bool
	finalizers []finalizer
	logger     *slog.Logger
}

func (e *executor) exec(ctx context.Context, op Op) error {
	e.logger.Debug("executing operation", "op", op.Kind.String(), "key", op.Key.String())

	binding := e.plan.bindings[op.Key]

	switch op.Kind {
	case OpCreateFromInstance:
		e.put(op.Key, binding.value)

	case OpCreateFromProvider:
		if err := ctx.Err(); err != nil {
			return errCancelled(err)
		}
		value, err := e.call(ctx, binding.provider, op.Key, ErrCodeProviderFailure)
		if err != nil {
			return err
		}
		e.put(op.Key, value)

	case OpReferenceKey:
		value, ok := e.lookup(op.Source)
		if !ok {
			return errInternal("reference source missing from store", op.Key)
		}
		e.put(op.Key, value)

	case OpAssembleSet:
		elements := make([]any, 0, len(op.Elements))
		for _, elemKey := range op.Elements {
			value, ok := e.lookup(elemKey)
			if !ok {
				return errInternal("set element missing from store", op.Key)
			}
			elements = append(elements, value)
		}
		e.put(op.Key, elements)

	case OpMakeProxy:
		if binding.proxy == nil {
			return errInternal("proxy scheduled for a key without a factory", op.Key)
		}
		ref := &Ref{}
		e.refs[op.Key] = ref
		e.store[op.Key] = binding.proxy(ref)

	case OpInitProxy:
		ref := e.refs[op.Key]
		if ref == nil || !e.created[op.Key] {
			return errProxyInitFailure(op.Key)
		}
		ref.resolve(e.store[op.Key])

	case OpExecuteEffect:
		if err := ctx.Err(); err != nil {
			return errCancelled(err)
		}
		value, err := e.call(ctx, binding.provider, op.Key, ErrCodeEffectFailure)
		if err != nil {
			return err
		}
		e.put(op.Key, value)

	case OpAllocateResource:
		if err := ctx.Err(); err != nil {
			return errCancelled(err)
		}
		value, err := e.acquire(ctx, binding.resource, op.Key)
		if err != nil {
			return err
		}
		e.put(op.Key, value)

	default:
		return errInternal(fmt.Sprintf("unknown operation kind %d", op.Kind), op.Key)
	}

	return nil
}

func (e *executor) put(key Key, value any) {
	e.store[key] = value
	e.created[key] = true
}

func (e *executor) lookup(key Key) (any, bool) {
	if value, ok := e.store[key]; ok {
		return value, ok
	}
	if e.parent != nil {
		value, err := e.parent.Get(key)
		if err == nil {
			return value, true
		}
	}
	return nil, false
}

// call invokes a provider or effect, converting panics into the pass's
// failure code. Internal engine faults raised through Deps pass through
// unwrapped so they keep their classification.
func (e *executor) call(ctx context.Context, fn ProviderFunc, key Key, code ErrorCode) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r, key, code)
		}
	}()

	value, err = fn(ctx, &depView{executor: e})
	if err != nil {
		err = newError(code, failureMessage(code), err).withKey(key)
	}
	return value, err
}

func (e *executor) acquire(ctx context.Context, fn ResourceFunc, key Key) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r, key, ErrCodeResourceFailure)
		}
	}()

	value, release, err := fn(ctx, &depView{executor: e})
	if err != nil {
		return nil, errResourceFailure(key, err)
	}
	if release != nil {
		e.finalizers = append(e.finalizers, finalizer{key: key, release: release})
	}
	return value, nil
}

func recoveredError(r any, key Key, code ErrorCode) error {
	var internal *Error
	if err, ok := r.(error); ok && errors.As(err, &internal) && internal.Code == ErrCodeInternal {
		return internal
	}
	return newError(code, failureMessage(code), fmt.Errorf("panic: %v", r)).withKey(key)
}

func failureMessage(code ErrorCode) string {
	switch code {
	case ErrCodeEffectFailure:
		return "effect failed"
	case ErrCodeResourceFailure:
		return "resource acquisition failed"
	default:
		return "provider failed"
	}
}

// depView is the Deps implementation handed to recipes. It reads the pass's
// store first, then the parent chain.
type depView struct {
	executor *executor
}

func (d *depView) Get(key Key) any {
	value, ok := d.executor.lookup(key)
	if !ok {
		panic(errInternal("dependency not available at execution time", key))
	}
	return value
}

func (d *depView) Lookup(key Key) (any, bool) {
	return d.executor.lookup(key)
}

// releaseAll runs finalizers in strict reverse acquisition order, each
// exactly once, collecting every error. Release failures never stop the
// unwind.
func releaseAll(ctx context.Context, finalizers []finalizer, logger *slog.Logger, hooks []ReleaseHook) error {
	var errs []error
	for i := len(finalizers) - 1; i >= 0; i-- {
		f := finalizers[i]
		logger.Debug("releasing resource", "key", f.key.String())

		start := time.Now()
		err := f.release(ctx)
		for _, hook := range hooks {
			hook(f.key, time.Since(start), err)
		}
		if err != nil {
			logger.Warn("resource release failed", "key", f.key.String(), "error", err)
			errs = append(errs, fmt.Errorf("release %s: %w", f.key, err))
		}
	}
	return errors.Join(errs...)
}

func sortedImportKeys(imports map[Key]struct{}) []Key {
	keys := make([]Key, 0, len(imports))
	for k := range imports {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}
