package core

import "sync"

// stateBase is satisfied by any struct that embeds StateBase.
// Hooks accept stateBase so callers can pass s directly.
type stateBase interface {
	state() *StateBase
}

func (s *StateBase) state() *StateBase { return s }

// StateBase is the component side of a binding. It implements Component:
// IsMounted reports whether it is mounted and not disposed, and Refresh
// schedules a rebuild with its BuildOwner. Embed it in your state:
//
//	type counterState struct {
//	    core.StateBase
//	    count *core.Observable[int]
//	}
//
//	func (s *counterState) InitState() {
//	    s.count = core.UseState(s, 0)
//	}
type StateBase struct {
	owner     *BuildOwner
	build     func()
	mounted   bool
	disposers []func()
	disposed  bool
	mu        sync.Mutex
}

// Mount attaches the state to owner. build runs each time the owner
// flushes a rebuild for this state.
func (s *StateBase) Mount(owner *BuildOwner, build func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.owner = owner
	s.build = build
	s.mounted = true
}

// Unmount detaches the state without disposing it. Observables bound to
// it drop it on their next change.
func (s *StateBase) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = false
}

// IsMounted reports whether the state is mounted and not disposed.
func (s *StateBase) IsMounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted && !s.disposed
}

// Refresh schedules a rebuild. It is the Component hook observables call.
func (s *StateBase) Refresh() {
	s.SetState(nil)
}

// SetState executes the given function and schedules a rebuild.
// Safe to call even after disposal (becomes a no-op).
//
// SetState is NOT thread-safe. It must only be called from the UI thread.
// To update state from a background goroutine, use Dispatch.
func (s *StateBase) SetState(fn func()) {
	if s.IsDisposed() {
		return
	}
	if fn != nil {
		fn()
	}
	s.mu.Lock()
	owner := s.owner
	s.mu.Unlock()
	if owner != nil {
		owner.ScheduleBuild(s)
	}
}

// RebuildIfNeeded runs the build function if the state is still mounted.
// The BuildOwner calls it while flushing.
func (s *StateBase) RebuildIfNeeded() {
	s.mu.Lock()
	build := s.build
	live := s.mounted && !s.disposed
	s.mu.Unlock()
	if live && build != nil {
		build()
	}
}

// OnDispose registers a cleanup function to be called when the state is disposed.
// Returns an unregister function that can be called to remove the disposer.
// The cleanup function will only be called once.
func (s *StateBase) OnDispose(cleanup func()) func() {
	if cleanup == nil {
		return func() {}
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		// Already disposed, run cleanup immediately
		cleanup()
		return func() {}
	}
	index := len(s.disposers)
	s.disposers = append(s.disposers, cleanup)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if index < len(s.disposers) {
			s.disposers[index] = nil
		}
	}
}

// RunDisposers executes all registered disposers in reverse order.
// This is called automatically by Dispose().
func (s *StateBase) RunDisposers() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.mounted = false
	disposers := s.disposers
	s.disposers = nil
	s.mu.Unlock()

	// Disposers may unbind observables, which must not see s.mu held.
	for i := len(disposers) - 1; i >= 0; i-- {
		if disposers[i] != nil {
			disposers[i]()
		}
	}
}

// Dispose cleans up resources. Override this method if you need custom cleanup,
// but always call s.RunDisposers() or s.StateBase.Dispose() in your override.
func (s *StateBase) Dispose() {
	s.RunDisposers()
}

// IsDisposed returns true if this state has been disposed.
func (s *StateBase) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
