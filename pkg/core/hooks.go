package core

import "github.com/go-drift/rx/pkg/errors"

// Disposable is anything with a Dispose method, such as an Observable.
type Disposable interface {
	Dispose()
}

// UseController creates a controller and registers it for automatic disposal.
// The controller will be disposed when the state is disposed.
//
// Example:
//
//	func (s *myState) InitState() {
//	    s.filter = core.UseController(s, func() *core.Observable[string] {
//	        return core.New("")
//	    })
//	}
func UseController[C Disposable](s stateBase, create func() C) C {
	base := s.state()
	controller := create()
	base.OnDispose(func() {
		controller.Dispose()
	})
	return controller
}

// UseObservable binds the state to an observable so it rebuilds when the
// observable changes. Call this once in InitState(), not in Build(). The
// binding is removed when the state is disposed; the observable itself is
// left alone.
//
// Example:
//
//	func (s *myState) InitState() {
//	    core.UseObservable(s, s.counter)
//	}
func UseObservable[T any](s stateBase, obs *Observable[T]) {
	base := s.state()
	obs.Bind(base)
	base.OnDispose(func() {
		obs.Unbind(base)
	})
}

// UseState creates an observable and binds it to the state in one step.
// The state must already exist; the observable is not disposed with it.
//
// Example:
//
//	func (s *myState) InitState() {
//	    s.count = core.UseState(s, 0)
//	}
//
//	func (s *myState) increment() {
//	    s.count.Update(func(v int) int { return v + 1 })
//	}
func UseState[T comparable](s stateBase, initial T, opts ...Option) *Observable[T] {
	obs := New(initial, opts...)
	UseObservable(s, obs)
	return obs
}

// UseStream feeds every value of the observable's stream to fn on the UI
// thread, starting with the current value. It does not bind the state.
// The subscription is cancelled when the state is disposed. A panic in fn
// is reported and does not stop later values.
func UseStream[T any](s stateBase, obs *Observable[T], fn func(T)) {
	base := s.state()
	sub := obs.Subscribe()
	base.OnDispose(sub.Cancel)
	go func() {
		for v := range sub.C {
			runOnUIThread(func() {
				defer errors.Recover("core.UseStream")
				if !base.IsDisposed() {
					fn(v)
				}
			})
		}
	}()
}
