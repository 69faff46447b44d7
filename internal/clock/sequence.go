package clock

import "sync/atomic"

// Sequence is a monotonic logical clock. Every committed snapshot is stamped
// with Sequence.Next() so consumers can order them without trusting wall time.
//
// Thread-safety: Sequence is safe for concurrent use (atomic operations).
type Sequence struct {
	seq atomic.Int64
}

// NewSequence creates a sequence starting at 0.
func NewSequence() *Sequence {
	return &Sequence{}
}

// NewSequenceAt creates a sequence resuming after start, e.g. from the last
// journaled snapshot.
func NewSequenceAt(start int64) *Sequence {
	s := &Sequence{}
	s.seq.Store(start)
	return s
}

// Next returns the next value.
func (s *Sequence) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the last issued value without incrementing.
func (s *Sequence) Current() int64 {
	return s.seq.Load()
}
