package concurrent

import "sync/atomic"

// SPSCRing is a single-producer single-consumer ring buffer. With one
// goroutine on each end it needs no CAS at all: the producer owns head,
// the consumer owns tail, and each side only ever loads the other's
// cursor. Cursors sit on separate cache lines.
type SPSCRing[T any] struct {
	head atomic.Uint64
	_    [56]byte
	tail atomic.Uint64
	_    [56]byte
	buf  []T
	mask uint64
}

// NewSPSCRing allocates a ring with power-of-two capacity.
func NewSPSCRing[T any](capacity int) *SPSCRing[T] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("concurrent: ring capacity must be a power of two")
	}
	return &SPSCRing[T]{buf: make([]T, capacity), mask: uint64(capacity - 1)}
}

// Push appends v; returns false if full. Producer side only.
func (r *SPSCRing[T]) Push(v T) bool {
	h := r.head.Load()
	t := r.tail.Load()
	if h-t == uint64(len(r.buf)) {
		return false
	}
	r.buf[h&r.mask] = v
	r.head.Store(h + 1)
	return true
}

// Pop removes the oldest value; returns false if empty. Consumer side only.
func (r *SPSCRing[T]) Pop() (T, bool) {
	t := r.tail.Load()
	h := r.head.Load()
	if t == h {
		var zero T
		return zero, false
	}
	v := r.buf[t&r.mask]
	var zero T
	r.buf[t&r.mask] = zero
	r.tail.Store(t + 1)
	return v, true
}

func (r *SPSCRing[T]) Len() int { return int(r.head.Load() - r.tail.Load()) }
func (r *SPSCRing[T]) Cap() int { return len(r.buf) }

func (r *SPSCRing[T]) Empty() bool { return r.head.Load() == r.tail.Load() }

func (r *SPSCRing[T]) Full() bool {
	return r.head.Load()-r.tail.Load() == uint64(len(r.buf))
}
