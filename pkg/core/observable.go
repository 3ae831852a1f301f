package core

import (
	stderrors "errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-drift/rx/pkg/errors"
)

var (
	// ErrDisposed is the panic value (wrapped) for using a disposed observable.
	ErrDisposed = stderrors.New("observable is disposed")
	// ErrNoSources is the panic value (wrapped) for combining zero sources.
	ErrNoSources = stderrors.New("combine requires at least one source")
)

// Component is a UI component an observable can be bound to. The observable
// never owns it: IsMounted is checked before every refresh, and components
// that report false are dropped on the next notification.
//
// Components are compared by identity, so implementations should be pointers.
type Component interface {
	// IsMounted reports whether the component is still attached.
	IsMounted() bool
	// Refresh schedules a rebuild from current state. It may be called
	// several times before the next build.
	Refresh()
}

// Listener wraps a change callback so it can be registered and removed
// by identity.
type Listener[T any] struct {
	fn func(T)
	// propagate re-panics failures to the mutating caller once the
	// notification pass completes, instead of only reporting them.
	propagate bool
}

// NewListener wraps fn for use with Observable.Listen.
func NewListener[T any](fn func(T)) *Listener[T] {
	return &Listener[T]{fn: fn}
}

// Observable holds a value and notifies bound components, direct listeners
// and stream subscribers when it changes.
//
// Every effective mutation runs the same pass, synchronously on the calling
// goroutine: components reporting !IsMounted are pruned, the remaining
// components are refreshed, direct listeners are called with the new value,
// and the value is published to the stream. A panicking listener or refresh
// is reported to the errors package handler and does not stop the pass.
//
// Observable is meant to be driven from the UI thread. Its internal state is
// guarded by a mutex so reads from a timer or stream goroutine are safe, but
// no lock is held while calling out.
type Observable[T any] struct {
	mu         sync.Mutex
	value      T
	strict     bool
	name       string
	equal      func(a, b T) bool
	components []Component
	listeners  []*Listener[T]
	bus        *ChangeBus[T]
	debouncers []*debouncer
	releases   []func()
	disposed   bool
	// pass counts notification passes. A pass started from inside another
	// pass supersedes it.
	pass uint64
}

// New creates an observable compared with ==.
//
//	count := core.New(0)
//	count.Set(count.Value() + 1)
func New[T comparable](initial T, opts ...Option) *Observable[T] {
	return NewFunc(initial, func(a, b T) bool { return a == b }, opts...)
}

// NewFunc creates an observable compared with equal. A nil equal treats
// every value as changed, so every Set notifies.
func NewFunc[T any](initial T, equal func(a, b T) bool, opts ...Option) *Observable[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Observable[T]{
		value:  initial,
		strict: o.strict,
		name:   o.name,
		equal:  equal,
		bus:    NewChangeBus(initial),
	}
}

// Value returns the current value.
func (o *Observable[T]) Value() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Any returns the current value as an untyped interface.
func (o *Observable[T]) Any() any {
	return o.Value()
}

// Strict reports whether equal values are suppressed.
func (o *Observable[T]) Strict() bool {
	return o.strict
}

// Name returns the label given with WithName.
func (o *Observable[T]) Name() string {
	return o.name
}

// Set replaces the value and notifies. A strict observable ignores a value
// equal to the current one.
func (o *Observable[T]) Set(v T) {
	current := o.load("Set")
	if o.strict && o.equal != nil && o.equal(current, v) {
		return
	}
	o.store("Set", v)
	o.notify()
}

// Update sets the result of fn applied to the current value. It goes
// through Set, so strict suppression applies.
//
//	count.Update(func(v int) int { return v + 1 })
func (o *Observable[T]) Update(fn func(T) T) {
	o.Set(fn(o.load("Update")))
}

// Mutate edits the value in place and always notifies. Use it for
// aggregates whose in-place edits equality cannot see.
//
//	todos.Mutate(func(items *[]string) { *items = append(*items, "milk") })
func (o *Observable[T]) Mutate(fn func(*T)) {
	v := o.load("Mutate")
	fn(&v)
	o.store("Mutate", v)
	o.notify()
}

// Notify runs a notification pass with the current value.
func (o *Observable[T]) Notify() {
	o.load("Notify")
	o.notify()
}

// Listen registers l. Registering the same listener twice is a no-op, and
// l is not called until the next change.
func (o *Observable[T]) Listen(l *Listener[T]) {
	if l == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.checkLocked("Listen")
	if !slices.Contains(o.listeners, l) {
		o.listeners = append(o.listeners, l)
	}
}

// Unlisten removes l. Absent listeners are ignored.
func (o *Observable[T]) Unlisten(l *Listener[T]) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if i := slices.Index(o.listeners, l); i >= 0 {
		o.listeners = slices.Delete(o.listeners, i, i+1)
	}
}

// OnChange registers fn as a new listener and returns a function that
// removes it.
func (o *Observable[T]) OnChange(fn func(T)) (cancel func()) {
	l := NewListener(fn)
	o.Listen(l)
	return func() { o.Unlisten(l) }
}

// Bind registers c to be refreshed on every change and refreshes it once
// right away so it reflects the current value. Binding twice is a no-op.
func (o *Observable[T]) Bind(c Component) {
	if c == nil {
		return
	}
	added := func() bool {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.checkLocked("Bind")
		if slices.Contains(o.components, c) {
			return false
		}
		o.components = append(o.components, c)
		return true
	}()

	if added && o.mounted(c) {
		o.refresh(c)
	}
}

// Unbind removes c. Absent components are ignored.
func (o *Observable[T]) Unbind(c Component) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if i := slices.Index(o.components, c); i >= 0 {
		o.components = slices.Delete(o.components, i, i+1)
	}
}

// Debounce registers a listener that calls fn once a burst of changes has
// been quiet for delay, with the value current at that moment. Each call
// installs an independent debounced listener; the returned function
// removes it and drops any pending call.
//
// The timer fires on its own goroutine and fn is handed to the function
// installed with RegisterDispatch. Without one, fn runs on the timer
// goroutine, concurrently with the UI thread; apps should register a
// dispatcher before debouncing.
func (o *Observable[T]) Debounce(delay time.Duration, fn func(T)) (cancel func()) {
	d := &debouncer{delay: delay}
	fire := func() {
		defer errors.RecoverWithCallback(&errors.PanicError{
			Op:   "core.Observable.Debounce",
			Kind: errors.KindDebounce,
			Name: o.name,
		}, nil)
		fn(o.Value())
	}
	l := NewListener(func(T) { d.arm(fire) })

	func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.checkLocked("Debounce")
		o.listeners = append(o.listeners, l)
		o.debouncers = append(o.debouncers, d)
	}()

	return func() {
		o.Unlisten(l)
		d.cancel()
		o.mu.Lock()
		if i := slices.Index(o.debouncers, d); i >= 0 {
			o.debouncers = slices.Delete(o.debouncers, i, i+1)
		}
		o.mu.Unlock()
	}
}

// Stream returns a channel that first yields the current value and then
// every subsequent change. After Dispose the channel is already closed.
//
// The delivery goroutine lives until the observable is disposed; use
// Subscribe to cancel earlier.
func (o *Observable[T]) Stream() <-chan T {
	return o.Subscribe().C
}

// Subscribe is Stream with an explicit Cancel.
func (o *Observable[T]) Subscribe() *Subscription[T] {
	return o.bus.Subscribe()
}

// ListenerCount returns the number of registered direct listeners,
// including debounced and combinator listeners.
func (o *Observable[T]) ListenerCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.listeners)
}

// ComponentCount returns the number of bound components, counting those
// not yet found unmounted.
func (o *Observable[T]) ComponentCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.components)
}

// IsDisposed reports whether Dispose has been called.
func (o *Observable[T]) IsDisposed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disposed
}

// Dispose drops every listener and component without notifying them,
// cancels pending debounced calls, releases subscriptions on combined
// sources, and closes the stream. Safe to call more than once.
func (o *Observable[T]) Dispose() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true
	o.listeners = nil
	o.components = nil
	debouncers := o.debouncers
	o.debouncers = nil
	releases := o.releases
	o.releases = nil
	o.mu.Unlock()

	for _, d := range debouncers {
		d.cancel()
	}
	for _, release := range releases {
		release()
	}
	o.bus.Close()
}

func (o *Observable[T]) subscribe(fn func()) (cancel func()) {
	l := &Listener[T]{fn: func(T) { fn() }, propagate: true}
	o.Listen(l)
	return func() { o.Unlisten(l) }
}

func (o *Observable[T]) load(op string) T {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.checkLocked(op)
	return o.value
}

func (o *Observable[T]) store(op string, v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.checkLocked(op)
	o.value = v
}

// checkLocked panics if the observable is disposed. The caller holds o.mu;
// the deferred unlock in the caller releases it while panicking.
func (o *Observable[T]) checkLocked(op string) {
	if o.disposed {
		if o.name != "" {
			panic(fmt.Errorf("core: Observable.%s (%s): %w", op, o.name, ErrDisposed))
		}
		panic(fmt.Errorf("core: Observable.%s: %w", op, ErrDisposed))
	}
}

// notify runs one notification pass. When a refresh or listener sets the
// observable again, the nested pass delivers the newer value to everyone
// and publishes it, so the rest of this pass is dropped.
func (o *Observable[T]) notify() {
	o.mu.Lock()
	o.pass++
	pass := o.pass
	value := o.value
	components := slices.Clone(o.components)
	listeners := slices.Clone(o.listeners)
	o.mu.Unlock()

	live := components[:0]
	var dead []Component
	for _, c := range components {
		if o.mounted(c) {
			live = append(live, c)
		} else {
			dead = append(dead, c)
		}
	}
	if len(dead) > 0 {
		o.mu.Lock()
		o.components = slices.DeleteFunc(o.components, func(c Component) bool {
			return slices.Contains(dead, c)
		})
		o.mu.Unlock()
	}

	for _, c := range live {
		if o.superseded(pass) {
			return
		}
		o.refresh(c)
	}

	var propagated any
	for _, l := range listeners {
		if o.superseded(pass) {
			break
		}
		if l.propagate {
			if r, ok := invokePropagating(l, value); ok && propagated == nil {
				propagated = r
			}
			continue
		}
		o.invoke(l, value)
	}

	if !o.superseded(pass) {
		o.bus.Publish(value)
	}

	if propagated != nil {
		panic(propagated)
	}
}

func (o *Observable[T]) superseded(pass uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pass != pass
}

// mounted asks c whether it is still mounted. A panicking check counts as
// unmounted, so the component is pruned.
func (o *Observable[T]) mounted(c Component) (ok bool) {
	defer errors.RecoverWithCallback(&errors.PanicError{
		Op:   "core.Observable.notify",
		Kind: errors.KindRefresh,
		Name: o.name,
	}, func(any) { ok = false })
	return c.IsMounted()
}

func (o *Observable[T]) refresh(c Component) {
	defer errors.RecoverWithCallback(&errors.PanicError{
		Op:   "core.Observable.notify",
		Kind: errors.KindRefresh,
		Name: o.name,
	}, nil)
	c.Refresh()
}

func (o *Observable[T]) invoke(l *Listener[T], value T) {
	defer errors.RecoverWithCallback(&errors.PanicError{
		Op:   "core.Observable.notify",
		Kind: errors.KindListener,
		Name: o.name,
	}, nil)
	l.fn(value)
}

func invokePropagating[T any](l *Listener[T], value T) (r any, panicked bool) {
	defer func() {
		if v := recover(); v != nil {
			r, panicked = v, true
		}
	}()
	l.fn(value)
	return nil, false
}
