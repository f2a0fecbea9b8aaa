package sched

// Runnable is anything a Scheduler can drive. *Task[T] satisfies it
// for every T.
type Runnable interface {
	Resume() State
	State() State
}

// Scheduler drives a set of tasks round-robin: each Step resumes every
// live task exactly once, in registration order. Finished tasks are
// dropped from the rotation. The scheduler itself is single-threaded.
type Scheduler struct {
	tasks []Runnable
}

// Add registers a task with the rotation.
func (s *Scheduler) Add(r Runnable) {
	s.tasks = append(s.tasks, r)
}

// Len is the number of tasks still in the rotation.
func (s *Scheduler) Len() int { return len(s.tasks) }

// Step resumes every live task once and reports whether any task
// remains live.
func (s *Scheduler) Step() bool {
	live := s.tasks[:0]
	for _, r := range s.tasks {
		st := r.State()
		if st == StateNew || st == StateSuspended {
			st = r.Resume()
		}
		if st == StateNew || st == StateSuspended {
			live = append(live, r)
		}
	}
	// Drop references so finished tasks can be collected.
	for i := len(live); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = live
	return len(s.tasks) > 0
}

// Run steps until every task has finished.
func (s *Scheduler) Run() {
	for s.Step() {
	}
}

// CancelAll cancels every remaining task that supports cancellation
// and empties the rotation.
func (s *Scheduler) CancelAll() {
	for _, r := range s.tasks {
		if c, ok := r.(interface{ Cancel() }); ok {
			c.Cancel()
		}
	}
	s.tasks = nil
}
