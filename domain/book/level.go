package book

import (
	"osprey/infra/memory"
)

// level is one price level: a FIFO of resting orders linked through
// the orders' own next/prev handles. Arrival order is preserved; head
// is the oldest order and is always matched first.
type level struct {
	price Price
	head  memory.Handle
	tail  memory.Handle
	count int
}

func newLevel(price Price) *level {
	return &level{price: price, head: memory.NilHandle, tail: memory.NilHandle}
}

func (l *level) empty() bool { return l.head == memory.NilHandle }

// pushBack appends h to the level.
func (l *level) pushBack(pool memory.Pool[Order], h memory.Handle) {
	o := pool.At(h)
	o.next = memory.NilHandle
	o.prev = l.tail
	if l.tail == memory.NilHandle {
		l.head = h
	} else {
		pool.At(l.tail).next = h
	}
	l.tail = h
	l.count++
}

// remove unlinks h from the level. h must be on this level.
func (l *level) remove(pool memory.Pool[Order], h memory.Handle) {
	o := pool.At(h)
	if o.prev == memory.NilHandle {
		l.head = o.next
	} else {
		pool.At(o.prev).next = o.next
	}
	if o.next == memory.NilHandle {
		l.tail = o.prev
	} else {
		pool.At(o.next).prev = o.prev
	}
	o.next = memory.NilHandle
	o.prev = memory.NilHandle
	l.count--
}

// front returns the oldest resting order's handle.
func (l *level) front() memory.Handle { return l.head }

// totalQty walks the level and sums remaining quantities. The matcher
// mutates resting orders in place, so the sum is computed on demand
// rather than maintained incrementally.
func (l *level) totalQty(pool memory.Pool[Order]) Quantity {
	var total Quantity
	for h := l.head; h != memory.NilHandle; h = pool.At(h).next {
		total = total.AddSat(pool.At(h).Remaining())
	}
	return total
}
