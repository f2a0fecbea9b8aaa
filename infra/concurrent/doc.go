// Package concurrent holds the lock-free and low-level synchronization
// primitives used on the hot path: a spinlock, an unbounded intrusive
// MPSC queue, a bounded MPSC ring and an SPSC ring.
package concurrent
