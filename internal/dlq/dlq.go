// Package dlq implements the delivery queue described in spec.md §4.7:
// a single multi-producer, single-consumer FIFO that decouples
// per-channel receive threads from AppDispatcher.
package dlq

import (
	"container/list"
	"sync"
	"time"

	"github.com/n7dwg/direwolf-go/internal/ax25"
)

// softLengthBound is the queue depth at which Append logs a warning —
// the "consumer is stuck" signal of spec.md §3.
const softLengthBound = 10

// FECType mirrors ax25.FECType locally so callers that only deal in
// Dlq items need not import ax25 for this one enum value; both are
// defined the same way.
type FECType = ax25.FECType

// Item is the received-frame variant of spec.md §3's DlqItem. (The
// original also carries client-request and notification variants for
// driving a data-link state machine; those are not named by spec.md's
// scope and are not modeled here.)
type Item struct {
	Channel     int
	Subchannel  int
	Slicer      int
	Frame       ax25.Frame
	AudioLevel  int
	FECType     FECType
	RetryEffort int
	Spectrum    string
}

// Logger receives the soft-bound overflow warning. The default is a
// no-op; cmd/direwolfd and tests install their own with WithLogger.
type Logger interface {
	Warnf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warnf(string, ...any) {}

// Queue is the delivery queue: a mutex+condvar-guarded linked list with
// exactly one registered consumer.
type Queue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items list.List
	log   Logger

	createdTotal  uint64
	consumedTotal uint64

	onAppend func(depth int)
}

// Option configures a Queue at construction.
type Option func(*Queue)

// WithLogger overrides the default no-op overflow logger.
func WithLogger(l Logger) Option {
	return func(q *Queue) { q.log = l }
}

// WithAppendHook installs a callback invoked after every Append with
// the resulting queue depth — the seam metrics.Collectors use to
// export a Dlq-depth gauge without this package depending on
// prometheus.
func WithAppendHook(f func(depth int)) Option {
	return func(q *Queue) { q.onAppend = f }
}

// New returns an empty Queue.
func New(opts ...Option) *Queue {
	q := &Queue{log: noopLogger{}}
	q.cond = sync.NewCond(&q.mu)
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Append adds item to the tail of the queue and wakes the consumer.
func (q *Queue) Append(item Item) {
	q.mu.Lock()
	q.items.PushBack(item)
	q.createdTotal++
	depth := q.items.Len()
	if depth > softLengthBound {
		q.log.Warnf("dlq: queue depth %d exceeds soft bound %d; is the consumer stuck?", depth, softLengthBound)
	}
	q.mu.Unlock()
	q.cond.Signal()
	if q.onAppend != nil {
		q.onAppend(depth)
	}
}

// Remove pops and returns the head of the queue without blocking.
func (q *Queue) Remove() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	front := q.items.Front()
	if front == nil {
		return Item{}, false
	}
	q.items.Remove(front)
	q.consumedTotal++
	return front.Value.(Item), true
}

// WaitWhileEmpty blocks until an item arrives or timeout elapses (zero
// means wait forever), returning whether it timed out.
func (q *Queue) WaitWhileEmpty(timeout time.Duration) (timedOut bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() > 0 {
		return false
	}
	if timeout <= 0 {
		for q.items.Len() == 0 {
			q.cond.Wait()
		}
		return false
	}

	deadline := time.Now().Add(timeout)
	woken := make(chan struct{})
	go func() {
		// sync.Cond has no native deadline; translate the absolute
		// deadline into a timer that forcibly wakes this waiter.
		select {
		case <-time.After(time.Until(deadline)):
			q.cond.Broadcast()
		case <-woken:
		}
	}()
	defer close(woken)

	for q.items.Len() == 0 {
		if time.Now().After(deadline) {
			return true
		}
		q.cond.Wait()
	}
	return false
}

// Counts returns the lifetime created/consumed item counts, the signal
// spec.md §3's soft bound is a proxy for: a growing gap means the
// consumer has stalled.
func (q *Queue) Counts() (created, consumed uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.createdTotal, q.consumedTotal
}
