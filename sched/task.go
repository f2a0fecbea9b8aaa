// Package sched provides cooperatively scheduled tasks: units of work
// that run until they yield and only make progress while a driver
// resumes them. Tasks are backed by goroutines but never run
// unattended; between Resume calls a task is parked.
package sched

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrCanceled is returned by Result after a task was canceled.
var ErrCanceled = errors.New("sched: task canceled")

// State is a task's lifecycle position.
type State int32

const (
	// StateNew means the task body has not started.
	StateNew State = iota
	// StateSuspended means the task is parked at a yield point.
	StateSuspended
	// StateDone means the task body returned.
	StateDone
	// StateCanceled means the task was canceled at a yield point.
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateSuspended:
		return "suspended"
	case StateDone:
		return "done"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// canceled is the sentinel panicked through the task body on cancel so
// its defers run before the task goroutine exits.
type canceledSentinel struct{}

// Task runs fn one step at a time. Each Resume lets the body run until
// its next Yield or until it returns; the caller regains control only
// when the body is parked or finished. A Task must be driven from a
// single goroutine.
type Task[T any] struct {
	fn     func(*Yielder) (T, error)
	state  atomic.Int32
	resume chan struct{}
	parked chan struct{}
	cancel chan struct{}
	result T
	err    error
}

// NewTask builds a task around fn. The body does not run until the
// first Resume.
func NewTask[T any](fn func(*Yielder) (T, error)) *Task[T] {
	return &Task[T]{
		fn:     fn,
		resume: make(chan struct{}),
		parked: make(chan struct{}),
		cancel: make(chan struct{}),
	}
}

// Resume runs the task until its next yield point or completion and
// returns the resulting state.
func (t *Task[T]) Resume() State {
	switch State(t.state.Load()) {
	case StateDone, StateCanceled:
		return State(t.state.Load())
	case StateNew:
		t.state.Store(int32(StateSuspended))
		go t.run()
	}
	t.resume <- struct{}{}
	<-t.parked
	return State(t.state.Load())
}

// State reports the task's current state without resuming it.
func (t *Task[T]) State() State { return State(t.state.Load()) }

// Result returns the task's value. It is valid only once State is
// StateDone; a canceled task yields ErrCanceled.
func (t *Task[T]) Result() (T, error) {
	switch State(t.state.Load()) {
	case StateDone:
		return t.result, t.err
	case StateCanceled:
		var zero T
		return zero, ErrCanceled
	default:
		var zero T
		return zero, fmt.Errorf("sched: task still %s", t.State())
	}
}

// Cancel stops the task. A new task is marked canceled without ever
// running; a suspended task is unwound through its yield point so its
// defers execute. Canceling a finished task is a no-op.
func (t *Task[T]) Cancel() {
	switch State(t.state.Load()) {
	case StateNew:
		t.state.Store(int32(StateCanceled))
	case StateSuspended:
		close(t.cancel)
		<-t.parked
	}
}

func (t *Task[T]) run() {
	defer close(t.parked)
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(canceledSentinel); ok {
				t.state.Store(int32(StateCanceled))
				return
			}
			panic(r)
		}
	}()

	<-t.resume
	y := &Yielder{resume: t.resume, parked: t.parked, cancel: t.cancel, state: &t.state}
	t.result, t.err = t.fn(y)
	t.state.Store(int32(StateDone))
}

// Yielder is passed to a task body; Yield parks the body until the
// next Resume.
type Yielder struct {
	resume chan struct{}
	parked chan struct{}
	cancel chan struct{}
	state  *atomic.Int32
}

// Yield suspends the task, handing control back to the Resume caller.
// It returns when the task is resumed and panics through the body's
// defers when the task is canceled while parked.
func (y *Yielder) Yield() {
	y.state.Store(int32(StateSuspended))
	y.parked <- struct{}{}
	select {
	case <-y.resume:
	case <-y.cancel:
		panic(canceledSentinel{})
	}
}
