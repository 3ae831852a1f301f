package core

import (
	"sync"
	"time"
)

// Clock provides time and timers for debounced listeners. The default
// implementation uses system time. Tests can inject a fake clock via
// SetClock to control debounce timing deterministically.
type Clock interface {
	Now() time.Time
	// AfterFunc calls fn once d has elapsed. The returned stop function
	// cancels the call and reports whether it was still pending.
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// realClock uses system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

var (
	clockMu sync.RWMutex
	clock   Clock = realClock{}
)

// SetClock replaces the package clock. Returns the previous clock
// so callers can restore it during cleanup. Pass nil to restore system time.
func SetClock(c Clock) Clock {
	clockMu.Lock()
	defer clockMu.Unlock()
	prev := clock
	if c == nil {
		c = realClock{}
	}
	clock = c
	return prev
}

func currentClock() Clock {
	clockMu.RLock()
	defer clockMu.RUnlock()
	return clock
}
