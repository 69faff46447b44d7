package engine

import (
	"sync"

	"github.com/roach88/adherence/internal/model"
)

// Outbox is a thread-safe FIFO of committed snapshots waiting for
// replication.
//
// The outbox is unbounded so that a slow or absent replicator never blocks a
// command. Consumers drain it with TryDequeue and use Wait for
// context-aware waiting:
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-outbox.Wait():
//	    // TryDequeue until empty
//	}
type Outbox struct {
	mu     sync.Mutex
	snaps  []model.Snapshot
	closed bool
	signal chan struct{} // buffered, size 1
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{
		snaps:  make([]model.Snapshot, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a snapshot to the back of the outbox.
// Returns false if the outbox is closed.
func (o *Outbox) Enqueue(s model.Snapshot) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return false
	}

	o.snaps = append(o.snaps, s)

	// Non-blocking: the buffer of 1 coalesces multiple signals
	select {
	case o.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes and returns the front snapshot without blocking.
func (o *Outbox) TryDequeue() (model.Snapshot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.snaps) == 0 {
		return model.Snapshot{}, false
	}

	s := o.snaps[0]

	// Release the payload for GC
	o.snaps[0] = model.Snapshot{}

	if len(o.snaps) == 1 {
		o.snaps = o.snaps[:0]
	} else {
		o.snaps = o.snaps[1:]
	}

	return s, true
}

// Drain removes and returns every pending snapshot in order.
func (o *Outbox) Drain() []model.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]model.Snapshot, len(o.snaps))
	copy(out, o.snaps)
	clear(o.snaps)
	o.snaps = o.snaps[:0]
	return out
}

// Wait returns a channel that signals when snapshots may be available.
// The channel is closed when the outbox is closed.
func (o *Outbox) Wait() <-chan struct{} {
	return o.signal
}

// Len returns the number of pending snapshots.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.snaps)
}

// Close signals that no more snapshots will be enqueued.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	o.closed = true
	close(o.signal)
}
