package concurrent

import (
	"runtime"
	"sync/atomic"
)

// Spinlock is a test-and-set mutual exclusion primitive with exponential
// backoff. It is padded to a cache line so two locks never share one.
//
// Not re-entrant: a goroutine that already holds the lock must not call
// Lock again.
type Spinlock struct {
	state atomic.Uint32
	_     [60]byte
}

const maxBackoffShift = 10

// Lock acquires the lock, spinning with exponential backoff while it is
// held. After the backoff cap is reached each failed round yields to the
// Go scheduler instead of burning the core.
func (l *Spinlock) Lock() {
	if l.state.CompareAndSwap(0, 1) {
		return
	}
	backoff := 1
	for {
		// Spin on a plain load first so the owning core keeps the
		// cache line in shared state until release.
		for l.state.Load() != 0 {
			for i := 0; i < backoff; i++ {
				cpuRelax()
			}
			if backoff < 1<<maxBackoffShift {
				backoff <<= 1
			} else {
				runtime.Gosched()
			}
		}
		if l.state.CompareAndSwap(0, 1) {
			return
		}
	}
}

// TryLock acquires the lock without blocking. Returns false if it is held.
func (l *Spinlock) TryLock() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Unlock releases the lock. Calling Unlock on an unheld lock panics.
func (l *Spinlock) Unlock() {
	if !l.state.CompareAndSwap(1, 0) {
		panic("concurrent: unlock of unlocked Spinlock")
	}
}

//go:noinline
func cpuRelax() {
	// Kept out of line so the backoff loop does a call per iteration
	// rather than collapsing into an empty loop.
}
