// Package errors provides structured error reporting for observables.
//
// Failures that must not abort a notification pass (a panicking listener, a
// component whose refresh blows up, a debounced callback that fails on a
// later turn) are reported here instead of unwinding into the caller of Set.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindListener indicates a direct listener failure.
	KindListener
	// KindRefresh indicates a bound component refresh failure.
	KindRefresh
	// KindDebounce indicates a debounced callback failure.
	KindDebounce
	// KindConfig indicates a configuration or scenario error.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindListener:
		return "listener"
	case KindRefresh:
		return "refresh"
	case KindDebounce:
		return "debounce"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Error represents a structured error raised while propagating a change.
type Error struct {
	// Op is the operation that failed (e.g., "core.Observable.notify").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Name is the observable's label, if one was given.
	Name string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s [%s] observable=%s: %v", e.Op, e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "core.Observable.notify").
	Op string
	// Kind tells which step of the notification pass panicked.
	Kind ErrorKind
	// Name is the observable's label, if one was given.
	Name string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ErrorHandler receives errors reported while propagating changes.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
