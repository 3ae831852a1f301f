package core

// ObservableBuilder rebuilds from an observable's value. Mount binds it to
// Source, so it builds once right away and again after every change;
// Unmount unbinds and disposes it.
//
//	b := &core.ObservableBuilder[int]{
//	    Source:  count,
//	    Builder: func(v int) { label = fmt.Sprintf("Count: %d", v) },
//	}
//	b.Mount(owner)
//	owner.FlushBuild()
type ObservableBuilder[T any] struct {
	StateBase
	Source  *Observable[T]
	Builder func(value T)
}

// Mount attaches the builder to owner and binds it to Source.
func (b *ObservableBuilder[T]) Mount(owner *BuildOwner) {
	b.StateBase.Mount(owner, func() {
		if b.Builder != nil {
			b.Builder(b.Source.Value())
		}
	})
	b.Source.Bind(&b.StateBase)
}

// Unmount unbinds from Source and disposes the builder.
func (b *ObservableBuilder[T]) Unmount() {
	b.Source.Unbind(&b.StateBase)
	b.Dispose()
}
