package memory

import (
	"sync/atomic"

	"osprey/infra/concurrent"
)

const (
	// Slots per slab. Power of two so handle decomposition is a shift
	// and a mask.
	slabShift = 12
	slabSize  = 1 << slabShift
	slabMask  = slabSize - 1

	maxSlabs = 1 << 10
)

type slab[T any] struct {
	objs  []T
	links []atomic.Uint32
}

// SlabArena is the growable variant of Arena: when the free list and the
// bump region are both exhausted it allocates another fixed-size slab
// instead of failing. Alloc stays lock-free on the common path; only
// slab growth serializes, behind a spinlock.
//
// Prefer Arena on the hot path. SlabArena trades the bounded-latency
// guarantee for never reporting exhaustion (until maxSlabs).
type SlabArena[T any] struct {
	slabs [maxSlabs]atomic.Pointer[slab[T]]
	count atomic.Uint32
	bump  atomic.Uint64
	head  atomic.Uint64
	inUse atomic.Int64
	grow  concurrent.Spinlock
}

// NewSlabArena returns an arena pre-populated with one slab.
func NewSlabArena[T any]() *SlabArena[T] {
	a := &SlabArena[T]{}
	a.head.Store(packHead(0, nilIdx))
	a.addSlab()
	return a
}

// Alloc returns a zeroed slot, growing by one slab if necessary.
// Fails only once maxSlabs slabs exist.
func (a *SlabArena[T]) Alloc() (Handle, bool) {
	// Reclaimed slots first.
	for {
		old := a.head.Load()
		gen, idx := unpackHead(old)
		if idx == nilIdx {
			break
		}
		next := a.linkAt(idx).Load()
		if a.head.CompareAndSwap(old, packHead(gen+1, next)) {
			var zero T
			*a.at(idx) = zero
			a.inUse.Add(1)
			return Handle(idx), true
		}
	}

	// Bump-allocate from the slab region.
	idx := a.bump.Add(1) - 1
	if idx >= uint64(maxSlabs)*slabSize {
		return NilHandle, false
	}
	for idx >= uint64(a.count.Load())*slabSize {
		if !a.addSlab() {
			return NilHandle, false
		}
	}
	a.inUse.Add(1)
	return Handle(idx), true
}

// Free pushes a slot back onto the shared free list.
func (a *SlabArena[T]) Free(h Handle) {
	if h == NilHandle {
		return
	}
	idx := uint32(h)
	for {
		old := a.head.Load()
		gen, headIdx := unpackHead(old)
		a.linkAt(idx).Store(headIdx)
		if a.head.CompareAndSwap(old, packHead(gen+1, idx)) {
			a.inUse.Add(-1)
			return
		}
	}
}

// At resolves a handle to its slot.
func (a *SlabArena[T]) At(h Handle) *T { return a.at(uint32(h)) }

// Cap returns the current capacity across all slabs.
func (a *SlabArena[T]) Cap() int { return int(a.count.Load()) * slabSize }

// InUse returns the number of currently allocated slots.
func (a *SlabArena[T]) InUse() int { return int(a.inUse.Load()) }

func (a *SlabArena[T]) at(idx uint32) *T {
	return &a.slabs[idx>>slabShift].Load().objs[idx&slabMask]
}

func (a *SlabArena[T]) linkAt(idx uint32) *atomic.Uint32 {
	return &a.slabs[idx>>slabShift].Load().links[idx&slabMask]
}

func (a *SlabArena[T]) addSlab() bool {
	a.grow.Lock()
	defer a.grow.Unlock()

	n := a.count.Load()
	if n >= maxSlabs {
		return false
	}
	a.slabs[n].Store(&slab[T]{
		objs:  make([]T, slabSize),
		links: make([]atomic.Uint32, slabSize),
	})
	a.count.Store(n + 1)
	return true
}
