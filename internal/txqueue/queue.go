// Package txqueue implements the two-priority, per-channel outgoing
// frame FIFO described in spec.md §4.5.
package txqueue

import (
	"sync"

	"github.com/n7dwg/direwolf-go/internal/ax25"
)

// Priority selects which of a channel's two FIFOs an item belongs to.
type Priority int

const (
	Hi Priority = iota
	Lo
	numPriorities
)

// Queue holds HI and LO FIFOs for one channel. Only the channel's own
// XmitScheduler goroutine should call Remove; any goroutine may Append.
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	fifo     [numPriorities][]ax25.Frame
	closed   bool
}

// New returns an empty Queue.
func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Append adds frame to the tail of the given priority's FIFO and wakes
// any goroutine blocked in WaitWhileEmpty.
func (q *Queue) Append(prio Priority, frame ax25.Frame) {
	q.mu.Lock()
	q.fifo[prio] = append(q.fifo[prio], frame)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Remove pops and returns the head of the given priority's FIFO, or
// false if it is empty.
func (q *Queue) Remove(prio Priority) (ax25.Frame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.fifo[prio]) == 0 {
		return ax25.Frame{}, false
	}
	f := q.fifo[prio][0]
	q.fifo[prio] = q.fifo[prio][1:]
	return f, true
}

// Peek returns the head of the given priority's FIFO without removing
// it, or false if empty.
func (q *Queue) Peek(prio Priority) (ax25.Frame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.fifo[prio]) == 0 {
		return ax25.Frame{}, false
	}
	return q.fifo[prio][0], true
}

// IsEmpty reports whether both priorities are empty.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fifo[Hi]) == 0 && len(q.fifo[Lo]) == 0
}

// WaitWhileEmpty blocks until either priority is non-empty or Close is
// called.
func (q *Queue) WaitWhileEmpty() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.fifo[Hi]) == 0 && len(q.fifo[Lo]) == 0 && !q.closed {
		q.cond.Wait()
	}
}

// Close wakes any goroutine blocked in WaitWhileEmpty permanently, for
// clean shutdown.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
