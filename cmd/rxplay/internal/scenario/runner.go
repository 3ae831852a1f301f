package scenario

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-drift/rx/pkg/core"
	drifttest "github.com/go-drift/rx/pkg/testing"
)

// Result summarises one scenario run.
type Result struct {
	Name     string
	Steps    int
	Failures []string
}

// OK reports whether every expectation held.
func (r *Result) OK() bool {
	return len(r.Failures) == 0
}

// node is the untyped handle the runner keeps per declared observable.
type node struct {
	source   core.Source
	set      func(any)
	clear    func()
	notify   func()
	dispose  func()
	onChange func(fn func(any)) func()
	debounce func(d time.Duration, fn func(any)) func()
}

func wrap[T any](o *core.Observable[T]) *node {
	return &node{
		source:  o,
		notify:  o.Notify,
		dispose: o.Dispose,
		onChange: func(fn func(any)) func() {
			return o.OnChange(func(v T) { fn(v) })
		},
		debounce: func(d time.Duration, fn func(any)) func() {
			return o.Debounce(d, func(v T) { fn(v) })
		},
	}
}

// Runner executes scenarios on a virtual clock, so debounce timing only
// advances through advance_ms steps.
type Runner struct {
	out    io.Writer
	logger *slog.Logger
	clock  *drifttest.FakeClock
	nodes  map[string]*node
}

// NewRunner creates a runner printing to out.
func NewRunner(out io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{out: out, logger: logger}
}

// Run builds the scenario's observables and plays its steps. A failed
// expectation is recorded in the result; a step that cannot run at all
// (such as setting a disposed observable) stops the run with an error.
func (r *Runner) Run(sc *Scenario) (res *Result, err error) {
	r.clock = drifttest.NewFakeClock()
	prev := core.SetClock(r.clock)
	defer core.SetClock(prev)

	r.nodes = make(map[string]*node, len(sc.Observables))
	defer r.disposeAll()

	res = &Result{Name: sc.Name}
	for _, decl := range sc.Observables {
		if err := r.declare(decl); err != nil {
			return res, err
		}
	}
	for i, step := range sc.Steps {
		if err := r.step(i, step, res); err != nil {
			return res, err
		}
		res.Steps++
	}
	return res, nil
}

func (r *Runner) declare(decl Observable) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("observable %q: %v", decl.Name, p)
		}
	}()

	opts := []core.Option{core.WithName(decl.Name)}
	if decl.Strict != nil {
		opts = append(opts, core.Strict(*decl.Strict))
	}

	var n *node
	switch {
	case len(decl.Combine) > 0:
		n = wrap(core.Combine(r.sources(decl.Combine), combiner(decl.Op), opts...))
	case len(decl.Computed) > 0:
		n = wrap(core.Computed(r.sources(decl.Computed), opts...))
	case decl.Nullable:
		var obs *core.Nullable[any]
		if decl.Value != nil {
			obs = core.NewNullableOf[any](decl.Value, opts...)
		} else {
			obs = core.NewNullable[any](opts...)
		}
		n = wrap(obs.Observable)
		n.source = obs
		n.set = func(v any) {
			if v == nil {
				obs.Clear()
				return
			}
			obs.SetValue(v)
		}
		n.clear = obs.Clear
	default:
		obs := core.New[any](decl.Value, opts...)
		n = wrap(obs)
		n.set = obs.Set
	}

	name := decl.Name
	if decl.Watch {
		n.onChange(func(v any) {
			fmt.Fprintf(r.out, "%s -> %s\n", name, display(v))
		})
	}
	if decl.DebounceMS > 0 {
		n.debounce(time.Duration(decl.DebounceMS)*time.Millisecond, func(v any) {
			fmt.Fprintf(r.out, "%s settled at %s\n", name, display(v))
		})
	}
	r.nodes[name] = n
	r.logger.Debug("declared observable", "name", name)
	return nil
}

func (r *Runner) sources(names []string) []core.Source {
	out := make([]core.Source, len(names))
	for i, name := range names {
		out[i] = r.nodes[name].source
	}
	return out
}

func (r *Runner) step(i int, s Step, res *Result) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("steps[%d]: %v", i, p)
		}
	}()

	switch {
	case s.Set != "":
		n := r.nodes[s.Set]
		if n.set == nil {
			return fmt.Errorf("steps[%d]: %q is derived and cannot be set", i, s.Set)
		}
		r.logger.Debug("set", "name", s.Set, "value", s.Value)
		n.set(s.Value)
	case s.Clear != "":
		n := r.nodes[s.Clear]
		if n.clear == nil {
			return fmt.Errorf("steps[%d]: %q is not nullable", i, s.Clear)
		}
		n.clear()
	case s.Notify != "":
		r.nodes[s.Notify].notify()
	case s.Expect != "":
		got := display(r.nodes[s.Expect].source.Any())
		want := display(s.Value)
		if got != want {
			res.Failures = append(res.Failures,
				fmt.Sprintf("steps[%d]: %s = %s, want %s", i, s.Expect, got, want))
		}
	case s.Print != "":
		fmt.Fprintf(r.out, "%s = %s\n", s.Print, display(r.nodes[s.Print].source.Any()))
	case s.Dispose != "":
		r.nodes[s.Dispose].dispose()
	case s.AdvanceMS > 0:
		r.clock.Advance(time.Duration(s.AdvanceMS) * time.Millisecond)
	}
	return nil
}

// disposeAll releases derived observables first so none outlives its sources.
func (r *Runner) disposeAll() {
	for _, n := range r.nodes {
		if n.set == nil {
			n.dispose()
		}
	}
	for _, n := range r.nodes {
		n.dispose()
	}
}

func display(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case core.Optional[any]:
		inner, ok := v.Get()
		if !ok {
			return "null"
		}
		return display(inner)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = display(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}
