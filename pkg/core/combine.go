package core

import (
	"fmt"
	"slices"
)

// Source is an observable the combinators can read and follow without
// knowing its value type. *Observable[T] and *Nullable[T] implement it.
type Source interface {
	// Any returns the current value.
	Any() any
	subscribe(fn func()) (cancel func())
}

// ValueSource is a Source with a typed Value accessor.
type ValueSource[T any] interface {
	Source
	Value() T
}

// CombineFunc derives an observable whose value is fn applied to the
// current values of sources, in order. It is computed once at construction
// and again, synchronously, every time any source notifies. The result is
// compared with equal under the derived observable's own strict policy.
//
// A panic from fn escapes to the caller: at construction directly, and on
// a source change after the source has finished notifying its other
// listeners. Disposing the derived observable stops following the sources;
// the sources themselves are never disposed by it.
func CombineFunc[R any](sources []Source, fn func(values []any) R, equal func(a, b R) bool, opts ...Option) *Observable[R] {
	if len(sources) == 0 {
		panic(fmt.Errorf("core: Combine: %w", ErrNoSources))
	}
	sources = slices.Clone(sources)
	values := func() []any {
		out := make([]any, len(sources))
		for i, s := range sources {
			out[i] = s.Any()
		}
		return out
	}

	derived := NewFunc(fn(values()), equal, opts...)
	recompute := func() { derived.Set(fn(values())) }

	releases := make([]func(), 0, len(sources))
	for _, s := range sources {
		releases = append(releases, s.subscribe(recompute))
	}
	derived.mu.Lock()
	derived.releases = releases
	derived.mu.Unlock()
	return derived
}

// Combine is CombineFunc for comparable results.
func Combine[R comparable](sources []Source, fn func(values []any) R, opts ...Option) *Observable[R] {
	return CombineFunc(sources, fn, func(a, b R) bool { return a == b }, opts...)
}

// Computed follows several sources and republishes their current values
// as a slice. It notifies on every source change.
//
//	pair := core.Computed([]core.Source{name, age}, core.WithName("pair"))
func Computed(sources []Source, opts ...Option) *Observable[[]any] {
	return CombineFunc(sources, func(values []any) []any { return values }, nil, opts...)
}

// Combine2 derives an observable from two sources.
//
//	sum := core.Combine2(a, b, func(x, y int) int { return x + y })
func Combine2[A, B any, R comparable](a ValueSource[A], b ValueSource[B], fn func(A, B) R, opts ...Option) *Observable[R] {
	return Combine([]Source{a, b}, func([]any) R {
		return fn(a.Value(), b.Value())
	}, opts...)
}

// Combine3 derives an observable from three sources.
func Combine3[A, B, C any, R comparable](a ValueSource[A], b ValueSource[B], c ValueSource[C], fn func(A, B, C) R, opts ...Option) *Observable[R] {
	return Combine([]Source{a, b, c}, func([]any) R {
		return fn(a.Value(), b.Value(), c.Value())
	}, opts...)
}

// Combine4 derives an observable from four sources.
func Combine4[A, B, C, D any, R comparable](a ValueSource[A], b ValueSource[B], c ValueSource[C], d ValueSource[D], fn func(A, B, C, D) R, opts ...Option) *Observable[R] {
	return Combine([]Source{a, b, c, d}, func([]any) R {
		return fn(a.Value(), b.Value(), c.Value(), d.Value())
	}, opts...)
}

// Combine5 derives an observable from five sources.
func Combine5[A, B, C, D, E any, R comparable](a ValueSource[A], b ValueSource[B], c ValueSource[C], d ValueSource[D], e ValueSource[E], fn func(A, B, C, D, E) R, opts ...Option) *Observable[R] {
	return Combine([]Source{a, b, c, d, e}, func([]any) R {
		return fn(a.Value(), b.Value(), c.Value(), d.Value(), e.Value())
	}, opts...)
}
