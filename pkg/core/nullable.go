package core

import "fmt"

// Optional is a value that may be absent. The zero Optional is absent.
// Two absent Optionals are equal, and an absent Optional never equals a
// present one.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsPresent reports whether a value is present.
func (o Optional[T]) IsPresent() bool {
	return o.ok
}

// OrElse returns the value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

func (o Optional[T]) String() string {
	if !o.ok {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.value)
}

// Nullable is an Observable whose value may be absent.
//
//	user := core.NewNullable[string]()
//	user.SetValue("ada")
//	name, ok := user.Get()
type Nullable[T comparable] struct {
	*Observable[Optional[T]]
}

// NewNullable creates a Nullable that starts absent.
func NewNullable[T comparable](opts ...Option) *Nullable[T] {
	return &Nullable[T]{New(None[T](), opts...)}
}

// NewNullableOf creates a Nullable holding v.
func NewNullableOf[T comparable](v T, opts ...Option) *Nullable[T] {
	return &Nullable[T]{New(Some(v), opts...)}
}

// SetValue sets a present value.
func (n *Nullable[T]) SetValue(v T) {
	n.Set(Some(v))
}

// Clear sets the value to absent.
func (n *Nullable[T]) Clear() {
	n.Set(None[T]())
}

// Get returns the current value and whether it is present.
func (n *Nullable[T]) Get() (T, bool) {
	return n.Value().Get()
}
