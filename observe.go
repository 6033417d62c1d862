package quiver

import (
	"log/slog"
	"time"
)

// OpHook observes every executed operation: the op, how long it took, and
// the error if it failed. Hooks run synchronously on the provisioning pass;
// bridge to whatever metrics registry the host process uses.
type OpHook func(op Op, duration time.Duration, err error)

// ReleaseHook observes every finalizer run, during failure unwind or
// locator close.
type ReleaseHook func(key Key, duration time.Duration, err error)

type produceConfig struct {
	parent    *Locator
	logger    *slog.Logger
	onOp      []OpHook
	onRelease []ReleaseHook
}

type ProduceOption func(*produceConfig)

// WithParent chains the new locator under parent: lookups missing locally
// fall through to the parent, and imported keys resolve from it. The parent
// is never mutated.
func WithParent(parent *Locator) ProduceOption {
	return func(cfg *produceConfig) {
		cfg.parent = parent
	}
}

// WithLogger sets the logger for the provisioning pass and the locator it
// produces.
func WithLogger(logger *slog.Logger) ProduceOption {
	return func(cfg *produceConfig) {
		cfg.logger = logger
	}
}

func WithOpObserver(hook OpHook) ProduceOption {
	return func(cfg *produceConfig) {
		cfg.onOp = append(cfg.onOp, hook)
	}
}

func WithReleaseObserver(hook ReleaseHook) ProduceOption {
	return func(cfg *produceConfig) {
		cfg.onRelease = append(cfg.onRelease, hook)
	}
}
