package core

// Option configures an Observable at construction.
type Option func(*options)

type options struct {
	strict bool
	name   string
}

func defaultOptions() options {
	return options{strict: true}
}

// Strict sets the change-detection policy. Strict observables (the default)
// skip Set when the new value equals the current one; non-strict observables
// notify on every Set.
func Strict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithName labels the observable in error reports.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}
