package core

import "sync"

// Rebuildable is anything a BuildOwner can schedule. StateBase implements it.
type Rebuildable interface {
	IsMounted() bool
	RebuildIfNeeded()
}

// BuildOwner tracks dirty states that need rebuilding. Scheduling the same
// state more than once before FlushBuild rebuilds it once.
type BuildOwner struct {
	dirty    []Rebuildable
	dirtySet map[Rebuildable]bool
	mu       sync.Mutex

	// OnNeedsFrame is called when a new state is scheduled for rebuild,
	// signalling the host that a frame should be rendered.
	OnNeedsFrame func()
}

// NewBuildOwner creates a new BuildOwner.
func NewBuildOwner() *BuildOwner {
	return &BuildOwner{}
}

// ScheduleBuild marks a state as needing rebuild.
func (b *BuildOwner) ScheduleBuild(r Rebuildable) {
	added := func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.dirtySet[r] {
			return false
		}
		if b.dirtySet == nil {
			b.dirtySet = make(map[Rebuildable]bool)
		}
		b.dirtySet[r] = true
		b.dirty = append(b.dirty, r)
		return true
	}()

	if added && b.OnNeedsFrame != nil {
		b.OnNeedsFrame()
	}
}

// NeedsWork returns true if there are dirty states.
func (b *BuildOwner) NeedsWork() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.dirty) > 0
}

// FlushBuild rebuilds all dirty states in scheduling order and returns how
// many builds ran. States scheduled during the flush are rebuilt in the
// same call.
func (b *BuildOwner) FlushBuild() int {
	built := 0
	for {
		b.mu.Lock()
		if len(b.dirty) == 0 {
			b.mu.Unlock()
			return built
		}
		dirty := b.dirty
		b.dirty = nil
		clear(b.dirtySet)
		b.mu.Unlock()

		for _, r := range dirty {
			if !r.IsMounted() {
				continue
			}
			r.RebuildIfNeeded()
			built++
		}
	}
}
