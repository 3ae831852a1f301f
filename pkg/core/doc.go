// Package core provides observable values for UI state and the component
// hooks that bind them to rebuildable states.
//
// # Observables
//
// An Observable holds a value and tells three kinds of parties when it
// changes: bound components (refreshed), direct listeners (called with the
// value) and stream subscribers (sent the value on a channel):
//
//	count := core.New(0)
//	count.OnChange(func(v int) { fmt.Println("count is", v) })
//	count.Set(1) // prints "count is 1"
//	count.Set(1) // strict by default: equal values are ignored
//
// Set and Update skip equal values unless the observable was created with
// Strict(false). Mutate edits the value in place and always notifies, since
// in-place edits to slices, maps and pointers are invisible to equality.
// Notify re-announces the current value after an out-of-band edit.
//
// # Components
//
// Anything implementing Component (IsMounted and Refresh) can be bound.
// StateBase implements it: Refresh schedules a rebuild with the state's
// BuildOwner, and a disposed or unmounted state is pruned the next time the
// observable changes.
//
//	func (s *myState) InitState() {
//	    s.count = core.UseState(s, 0) // create and bind
//	}
//
// # Deriving
//
// Combine2 through Combine5, Combine, CombineFunc and Computed build an
// observable from others and keep it up to date synchronously:
//
//	sum := core.Combine2(a, b, func(x, y int) int { return x + y })
//
// Dispose on a derived observable stops it following its sources.
//
// # Streams and Debouncing
//
// Stream returns a channel that replays the current value and then every
// change. Debounce calls back once a burst of changes has settled; timers
// come from the package Clock and fire on the UI thread via Dispatch.
//
// # Threading
//
// Mutations and their notifications run synchronously on the calling
// goroutine, which should be the UI thread. Use Dispatch to get there from
// a background goroutine.
package core
