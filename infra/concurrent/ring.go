package concurrent

import "sync/atomic"

// Ring is a bounded multi-producer single-consumer ring buffer. Each slot
// carries a sequence number so producers can claim slots with a single
// CAS and the consumer can tell a filled slot from a recycled one.
// Enqueue fails instead of blocking once the ring is full; that failure
// is the backpressure signal.
type Ring[T any] struct {
	slots []ringSlot[T]
	mask  uint64
	_     [48]byte
	enq   atomic.Uint64
	_     [56]byte
	deq   atomic.Uint64
	_     [56]byte
}

type ringSlot[T any] struct {
	seq atomic.Uint64
	val T
}

// NewRing allocates a ring with the given capacity, which must be a
// power of two.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("concurrent: ring capacity must be a power of two")
	}
	r := &Ring[T]{
		slots: make([]ringSlot[T], capacity),
		mask:  uint64(capacity - 1),
	}
	for i := range r.slots {
		r.slots[i].seq.Store(uint64(i))
	}
	return r
}

// TryEnqueue publishes v, returning false if the ring is full.
func (r *Ring[T]) TryEnqueue(v T) bool {
	pos := r.enq.Load()
	for {
		slot := &r.slots[pos&r.mask]
		seq := slot.seq.Load()
		diff := int64(seq) - int64(pos)
		switch {
		case diff == 0:
			if r.enq.CompareAndSwap(pos, pos+1) {
				slot.val = v
				slot.seq.Store(pos + 1)
				return true
			}
			pos = r.enq.Load()
		case diff < 0:
			return false
		default:
			// Another producer claimed this position; chase the cursor.
			pos = r.enq.Load()
		}
	}
}

// TryDequeue pops the next value. Single consumer only.
func (r *Ring[T]) TryDequeue() (T, bool) {
	pos := r.deq.Load()
	slot := &r.slots[pos&r.mask]
	seq := slot.seq.Load()
	if int64(seq)-int64(pos+1) != 0 {
		var zero T
		return zero, false
	}
	v := slot.val
	var zero T
	slot.val = zero
	slot.seq.Store(pos + uint64(len(r.slots)))
	r.deq.Store(pos + 1)
	return v, true
}

// Len returns the approximate number of buffered values.
func (r *Ring[T]) Len() int {
	return int(r.enq.Load() - r.deq.Load())
}

// Cap returns the ring capacity.
func (r *Ring[T]) Cap() int { return len(r.slots) }
