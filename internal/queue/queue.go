// Package queue implements the bounded lock-free multi-producer
// multi-consumer ring buffer that is the sole channel of communication
// between alog's producer goroutines and its consumer goroutine.
//
// The algorithm is Dmitry Vyukov's bounded MPMC queue: a fixed array of
// cells, each carrying a sequence counter that encodes whether the cell is
// ready for an enqueue or a dequeue. The sequence counter is the only
// synchronization point; there is no lock anywhere in this package.
package queue

import (
	"sync/atomic"
)

// cacheLinePad is sized to push adjacent fields onto separate cache lines,
// the same padding trick hayabusa-cloud-lfq's MPMC type uses around its
// head/tail/threshold cursors to avoid false sharing between producers and
// the single consumer.
type cacheLinePad [64 - 8]byte

type cell[T any] struct {
	sequence atomic.Uint64
	value    T
}

// Bounded is a fixed-capacity MPMC ring buffer. Capacity must be a power of
// two and at least 2; Bounded never allocates after construction.
type Bounded[T any] struct {
	_    cacheLinePad
	head atomic.Uint64 // enqueue cursor
	_    cacheLinePad
	tail atomic.Uint64 // dequeue cursor
	_    cacheLinePad
	mask uint64
	buf  []cell[T]
}

// New creates a Bounded queue of the given capacity. It panics if capacity
// is not a power of two or is less than 2.
func New[T any](capacity int) *Bounded[T] {
	q := &Bounded[T]{}
	q.Reset(capacity)
	return q
}

// Reset reinitializes the queue to a new capacity. It is only valid to call
// when no producer or consumer is concurrently using the queue: it discards
// whatever was buffered and replaces the backing array.
func (q *Bounded[T]) Reset(capacity int) {
	if !isPow2(capacity) || capacity < 2 {
		panic("queue: capacity must be a power of two and >= 2")
	}
	buf := make([]cell[T], capacity)
	for i := range buf {
		buf[i].sequence.Store(uint64(i))
	}
	q.buf = buf
	q.mask = uint64(capacity - 1)
	q.head.Store(0)
	q.tail.Store(0)
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Cap returns the queue's capacity.
func (q *Bounded[T]) Cap() int {
	return len(q.buf)
}

// TryPush attempts to enqueue x without blocking. It returns false if the
// queue is full.
func (q *Bounded[T]) TryPush(x T) bool {
	pos := q.head.Load()
	for {
		c := &q.buf[pos&q.mask]
		seq := c.sequence.Load()
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			if q.head.CompareAndSwap(pos, pos+1) {
				c.value = x
				c.sequence.Store(pos + 1)
				return true
			}
			pos = q.head.Load()
		case diff < 0:
			return false
		default:
			pos = q.head.Load()
		}
	}
}

// TryPop attempts to dequeue a value without blocking. It returns the zero
// value and false if the queue is empty.
func (q *Bounded[T]) TryPop() (T, bool) {
	pos := q.tail.Load()
	for {
		c := &q.buf[pos&q.mask]
		seq := c.sequence.Load()
		diff := int64(seq) - int64(pos+1)

		switch {
		case diff == 0:
			if q.tail.CompareAndSwap(pos, pos+1) {
				out := c.value
				var zero T
				c.value = zero
				c.sequence.Store(pos + uint64(len(q.buf)))
				return out, true
			}
			pos = q.tail.Load()
		case diff < 0:
			var zero T
			return zero, false
		default:
			pos = q.tail.Load()
		}
	}
}
