// Package testing provides test helpers for code built on package core.
//
// # Virtual Time
//
// FakeClock replaces the wall clock so debounce timing can be driven
// deterministically:
//
//	func TestSearch(t *testing.T) {
//	    clock := drifttest.NewFakeClock()
//	    prev := core.SetClock(clock)
//	    defer core.SetClock(prev)
//
//	    query := core.New("")
//	    query.Debounce(300*time.Millisecond, search)
//
//	    query.Set("go")
//	    clock.Advance(300 * time.Millisecond) // search("go") runs here
//	}
//
// Timers fire in deadline order on the goroutine calling Advance or Set,
// with Now reporting each timer's deadline while its callback runs.
package testing
