package concurrent

import "sync/atomic"

// Queue is an unbounded multi-producer single-consumer queue based on
// Vyukov's intrusive MPSC list. Producers publish by swapping the shared
// head pointer and then linking the previous head forward; the single
// consumer walks a private tail pointer in publish order.
//
// Enqueue is lock-free for any number of producers. TryDequeue is
// wait-free but must only ever be called from one goroutine. Ordering is
// FIFO per producer; two producers racing at the same instant are not
// arbitrated.
type Queue[T any] struct {
	head atomic.Pointer[qnode[T]]
	_    [56]byte
	tail *qnode[T]
}

type qnode[T any] struct {
	next atomic.Pointer[qnode[T]]
	val  T
}

// NewQueue returns an empty queue. The queue starts with a stub node so
// producers never observe a nil head.
func NewQueue[T any]() *Queue[T] {
	stub := new(qnode[T])
	q := &Queue[T]{tail: stub}
	q.head.Store(stub)
	return q
}

// Enqueue publishes v. Safe to call from any number of goroutines.
func (q *Queue[T]) Enqueue(v T) {
	n := &qnode[T]{val: v}
	prev := q.head.Swap(n)
	// The node becomes visible to the consumer only here. Between the
	// swap and this store the queue is momentarily "torn"; the consumer
	// simply observes it as empty.
	prev.next.Store(n)
}

// TryDequeue pops the oldest published value. Single consumer only.
func (q *Queue[T]) TryDequeue() (T, bool) {
	next := q.tail.next.Load()
	if next == nil {
		var zero T
		return zero, false
	}
	v := next.val
	var zero T
	next.val = zero
	q.tail = next
	return v, true
}

// Empty reports whether the queue looked empty at the time of the call.
// Approximate under concurrent enqueues.
func (q *Queue[T]) Empty() bool {
	return q.tail.next.Load() == nil
}
