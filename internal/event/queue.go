package event

import "sync/atomic"

const (
	queueSize  = 64 // power of two
	bufferMask = queueSize - 1
)

// Queue is a lock-free MPSC ring buffer of input events.
//
// Thread-safety:
//   - Push: lock-free CAS, multiple producers OK
//   - Drain: single consumer (the control loop)
//   - published flags prevent reading partial writes
//
// Overflow: oldest events are overwritten when full. The queue is sized far
// beyond anything a human can produce between two loop iterations.
type Queue struct {
	events    [queueSize]Event
	published [queueSize]atomic.Bool
	head      atomic.Uint64
	tail      atomic.Uint64
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push adds an event. Safe for concurrent producers, O(1) amortized.
func (q *Queue) Push(ev Event) {
	for {
		tail := q.tail.Load()
		if !q.tail.CompareAndSwap(tail, tail+1) {
			continue
		}
		idx := tail & bufferMask

		q.events[idx] = ev
		q.published[idx].Store(true) // must follow the event write

		// Advance head if we just overwrote an unread slot.
		head := q.head.Load()
		if tail+1-head > queueSize {
			q.head.CompareAndSwap(head, tail+1-queueSize)
		}
		return
	}
}

// Drain appends all pending events to buf in FIFO order and advances the
// read index. Single-consumer only.
func (q *Queue) Drain(buf []Event) []Event {
	head := q.head.Load()
	tail := q.tail.Load()

	if tail == head {
		return buf
	}

	avail := tail - head
	if avail > queueSize {
		avail = queueSize
		head = tail - queueSize
	}

	consumed := uint64(0)
	for i := uint64(0); i < avail; i++ {
		idx := (head + i) & bufferMask
		if !q.published[idx].Load() {
			break // writer not finished with this slot
		}
		buf = append(buf, q.events[idx])
		q.published[idx].Store(false)
		consumed++
	}

	// If an overflow push moved head concurrently, the CAS loses and the
	// overwritten slots stay skipped.
	q.head.CompareAndSwap(head, head+consumed)
	return buf
}
