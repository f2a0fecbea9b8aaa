package sequence

import "sync/atomic"

// Sequencer hands out strictly monotonic identifiers. One instance backs
// order IDs, another trade/event sequence numbers; both stay monotonic
// for the lifetime of the process so downstream consumers can order by
// them.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer whose first Next call returns start+1.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next identifier.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued identifier.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}
