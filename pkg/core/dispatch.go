package core

import "sync"

var (
	dispatchMu   sync.RWMutex
	dispatchFunc func(callback func())
)

// RegisterDispatch sets the function used to schedule callbacks on the UI
// thread. Debounced listeners and stream subscribers created with UseStream
// hop back onto the UI thread through it. Returns the previous function.
func RegisterDispatch(fn func(callback func())) func(callback func()) {
	dispatchMu.Lock()
	defer dispatchMu.Unlock()
	prev := dispatchFunc
	dispatchFunc = fn
	return prev
}

// Dispatch schedules a callback to run on the UI thread.
// Returns true if the callback was successfully scheduled, false if no dispatch function
// is registered or the callback is nil.
func Dispatch(callback func()) bool {
	dispatchMu.RLock()
	fn := dispatchFunc
	dispatchMu.RUnlock()
	if fn == nil || callback == nil {
		return false
	}
	fn(callback)
	return true
}

// runOnUIThread dispatches callback, or runs it inline when no dispatch
// function is registered.
func runOnUIThread(callback func()) {
	if !Dispatch(callback) && callback != nil {
		callback()
	}
}
