package memory

import (
	"math"
	"sync/atomic"
)

// Handle identifies a slot inside an arena. Handles replace intrusive
// raw pointers: a stale handle can at worst reach a recycled slot, never
// freed memory, and the generation tag on the free-list head makes the
// lock-free pop immune to ABA.
type Handle uint32

// NilHandle is the null slot reference.
const NilHandle Handle = math.MaxUint32

const nilIdx = uint32(math.MaxUint32)

// Pool is the allocator contract shared by the fixed and growable
// arenas. Alloc returns a zeroed slot or ok=false on exhaustion; callers
// must treat exhaustion as a recoverable failure.
type Pool[T any] interface {
	Alloc() (Handle, bool)
	Free(Handle)
	At(Handle) *T
	Cap() int
	InUse() int
}

// Arena is a fixed-capacity object pool with a lock-free LIFO free list.
// The free list is threaded through a parallel index array and popped or
// pushed with a single CAS on a packed (generation, index) head word, so
// any number of goroutines may allocate and free concurrently.
//
// Capacity never grows. That is the point: allocation latency is bounded
// and the worst case is an explicit exhaustion result, not a heap walk.
type Arena[T any] struct {
	slots []T
	links []atomic.Uint32
	head  atomic.Uint64
	inUse atomic.Int64
}

// NewArena allocates an arena holding capacity slots.
func NewArena[T any](capacity int) *Arena[T] {
	if capacity <= 0 || capacity >= int(nilIdx) {
		panic("memory: invalid arena capacity")
	}
	a := &Arena[T]{
		slots: make([]T, capacity),
		links: make([]atomic.Uint32, capacity),
	}
	for i := 0; i < capacity; i++ {
		next := nilIdx
		if i+1 < capacity {
			next = uint32(i + 1)
		}
		a.links[i].Store(next)
	}
	a.head.Store(packHead(0, 0))
	return a
}

// Alloc pops a slot off the free list. The slot is returned zeroed.
func (a *Arena[T]) Alloc() (Handle, bool) {
	for {
		old := a.head.Load()
		gen, idx := unpackHead(old)
		if idx == nilIdx {
			return NilHandle, false
		}
		next := a.links[idx].Load()
		if a.head.CompareAndSwap(old, packHead(gen+1, next)) {
			var zero T
			a.slots[idx] = zero
			a.inUse.Add(1)
			return Handle(idx), true
		}
	}
}

// Free pushes a slot back onto the free list. Freeing a handle twice
// corrupts the list; the caller owns that invariant.
func (a *Arena[T]) Free(h Handle) {
	if h == NilHandle {
		return
	}
	idx := uint32(h)
	for {
		old := a.head.Load()
		gen, headIdx := unpackHead(old)
		a.links[idx].Store(headIdx)
		if a.head.CompareAndSwap(old, packHead(gen+1, idx)) {
			a.inUse.Add(-1)
			return
		}
	}
}

// At resolves a handle to its slot.
func (a *Arena[T]) At(h Handle) *T { return &a.slots[h] }

// Cap returns the fixed slot count.
func (a *Arena[T]) Cap() int { return len(a.slots) }

// InUse returns the number of currently allocated slots.
func (a *Arena[T]) InUse() int { return int(a.inUse.Load()) }

// Available returns the number of free slots.
func (a *Arena[T]) Available() int { return a.Cap() - a.InUse() }

func packHead(gen uint32, idx uint32) uint64 {
	return uint64(gen)<<32 | uint64(idx)
}

func unpackHead(v uint64) (gen, idx uint32) {
	return uint32(v >> 32), uint32(v)
}
