package quiver

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Plan is an ordered, garbage-collected, acyclic sequence of operations that
// Produce executes to realize the object graph. Plans are immutable and safe
// to execute any number of times.
type Plan struct {
	ops      []Op
	breaks   []Break
	bindings map[Key]Binding
	imports  map[Key]struct{}
}

type planConfig struct {
	imports []Key
	proxies bool
	logger  *slog.Logger
}

type PlanOption func(*planConfig)

// WithImports declares keys satisfied by a parent locator at produce time.
// Edges to imported keys validate without a local binding.
func WithImports(keys ...Key) PlanOption {
	return func(cfg *planConfig) {
		cfg.imports = append(cfg.imports, keys...)
	}
}

// WithoutProxies disables cycle breaking: any dependency cycle fails planning
// instead of being broken with placeholders. Meant for bootstrap graphs that
// must stay indirection-free.
func WithoutProxies() PlanOption {
	return func(cfg *planConfig) {
		cfg.proxies = false
	}
}

// WithPlanLogger sets the logger used while planning.
func WithPlanLogger(logger *slog.Logger) PlanOption {
	return func(cfg *planConfig) {
		cfg.logger = logger
	}
}

// Compile turns a binding list and a root selection into an execution plan:
// preparation (set merging, overrides, validation), roots pruning, cycle
// breaking, then topological linearization. Compile is pure and synchronous;
// it never invokes a recipe.
func Compile(bindings []Binding, roots Roots, opts ...PlanOption) (*Plan, error) {
	cfg := &planConfig{proxies: true, logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	p, err := prepare(bindings, cfg.imports)
	if err != nil {
		return nil, err
	}

	if err := p.prune(roots); err != nil {
		return nil, err
	}

	residual, breaks, err := solve(p, cfg.proxies)
	if err != nil {
		return nil, err
	}

	ops, err := emitOps(p, residual, breaks)
	if err != nil {
		return nil, err
	}

	cfg.logger.Debug("plan compiled",
		"keys", len(p.bindings),
		"ops", len(ops),
		"breaks", len(breaks),
	)

	return &Plan{
		ops:      ops,
		breaks:   breaks,
		bindings: p.bindings,
		imports:  p.imports,
	}, nil
}

// Ops returns the ordered operation sequence.
func (p *Plan) Ops() []Op {
	ops := make([]Op, len(p.ops))
	copy(ops, p.ops)
	return ops
}

// Breaks returns the proxy indirections the cycle resolver inserted.
func (p *Plan) Breaks() []Break {
	breaks := make([]Break, len(p.breaks))
	copy(breaks, p.breaks)
	return breaks
}

// Keys returns every key the plan will produce, in key order.
func (p *Plan) Keys() []Key {
	return sortedBindingKeys(p.bindings)
}

// Verify re-checks the topological invariant over the operation sequence.
// Every plan Compile returns passes; the method exists for diagnostics and
// tests.
func (p *Plan) Verify() error {
	return verifyOps(p.ops, p.imports)
}

// Fprint writes a readable rendering of the plan: the ordered operations,
// then any proxy breaks.
func (p *Plan) Fprint(w io.Writer) {
	if len(p.ops) == 0 {
		_, _ = fmt.Fprintln(w, "(empty plan)")
		return
	}

	for i, op := range p.ops {
		_, _ = fmt.Fprintf(w, "%3d. %s\n", i+1, op)
	}

	if len(p.breaks) > 0 {
		_, _ = fmt.Fprintln(w, "breaks:")
		for _, br := range p.breaks {
			_, _ = fmt.Fprintf(w, "  %s\n", br)
		}
	}
}

func (p *Plan) String() string {
	var b strings.Builder
	p.Fprint(&b)
	return b.String()
}
