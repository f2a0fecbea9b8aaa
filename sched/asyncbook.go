package sched

import (
	"sync/atomic"

	"osprey/domain/book"
	"osprey/infra/concurrent"
)

// AsyncBook decouples order submission from matching: a producer
// enqueues orders into a ring while a cooperatively scheduled pump
// task applies them to the book one at a time, yielding after every
// order so it shares the scheduler fairly with other tasks.
type AsyncBook struct {
	book   *book.Book
	in     *concurrent.SPSCRing[book.BatchOrder]
	out    *concurrent.SPSCRing[book.MatchResult]
	pump   *Task[int]
	closed atomic.Bool
}

// NewAsyncBook wraps b with rings of the given capacity. Capacity must
// be a power of two.
func NewAsyncBook(b *book.Book, capacity int) *AsyncBook {
	a := &AsyncBook{
		book: b,
		in:   concurrent.NewSPSCRing[book.BatchOrder](capacity),
		out:  concurrent.NewSPSCRing[book.MatchResult](capacity),
	}
	a.pump = NewTask(a.run)
	return a
}

// Submit enqueues an order for the pump. It reports false when the
// ring is full; the caller decides whether to retry or shed.
func (a *AsyncBook) Submit(o book.BatchOrder) bool {
	if a.closed.Load() {
		return false
	}
	return a.in.Push(o)
}

// Close stops the intake. The pump finishes once it has drained the
// ring.
func (a *AsyncBook) Close() { a.closed.Store(true) }

// Poll takes the next result produced by the pump.
func (a *AsyncBook) Poll() (book.MatchResult, bool) {
	return a.out.Pop()
}

// Pump returns the task to register with a Scheduler. Its result is
// the number of orders applied.
func (a *AsyncBook) Pump() *Task[int] { return a.pump }

func (a *AsyncBook) run(y *Yielder) (int, error) {
	applied := 0
	for {
		o, ok := a.in.Pop()
		if !ok {
			if a.closed.Load() && a.in.Empty() {
				return applied, nil
			}
			// Nothing to do; give other tasks the slot.
			y.Yield()
			continue
		}
		res, _ := a.book.AddOrder(o.Side, o.Type, o.Price, o.Qty)
		for !a.out.Push(res) {
			// Result ring full: park until the consumer drains.
			y.Yield()
		}
		applied++
		y.Yield()
	}
}
