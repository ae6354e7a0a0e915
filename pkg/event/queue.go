package event

import "sync/atomic"

// Queue is a lock-free single-producer/single-consumer ring buffer of
// Events. Capacity is rounded up to a power of two. Push is called from
// the producer thread (MIDI parser, OSC listener, UI); Pop is called
// exclusively from the audio thread. Overflow silently drops the newest
// event — a non-recoverable condition in real-time audio, per spec §7 —
// and the ring never allocates once constructed.
//
// The position-counter/mask technique is the same one the teacher uses
// for its real-time circular buffer (pkg/dsp/buffer/writeahead.go):
// two monotonically increasing atomic counters, distance gives fill
// level, and wrap-around is a mask against a power-of-two size.
type Queue struct {
	data     []Event
	mask     uint32
	writePos atomic.Uint64
	readPos  atomic.Uint64

	dropped atomic.Uint64
}

// NewQueue creates a Queue whose capacity is the next power of two >=
// capacity (minimum 2).
func NewQueue(capacity int) *Queue {
	size := nextPowerOf2(capacity)
	if size < 2 {
		size = 2
	}
	return &Queue{
		data: make([]Event, size),
		mask: uint32(size - 1),
	}
}

// Push enqueues e. Called from the producer thread only. Returns false
// and drops e if the ring is full.
func (q *Queue) Push(e Event) bool {
	writePos := q.writePos.Load()
	readPos := q.readPos.Load()

	if writePos-readPos >= uint64(len(q.data)) {
		q.dropped.Add(1)
		return false
	}

	q.data[uint32(writePos)&q.mask] = e
	q.writePos.Store(writePos + 1)
	return true
}

// Pop dequeues the oldest Event, or the Null sentinel if the ring is
// empty. Called from the audio thread only.
func (q *Queue) Pop() Event {
	readPos := q.readPos.Load()
	writePos := q.writePos.Load()

	if readPos >= writePos {
		return Event{Kind: Null}
	}

	e := q.data[uint32(readPos)&q.mask]
	q.readPos.Store(readPos + 1)
	return e
}

// Len reports the number of events currently queued.
func (q *Queue) Len() int {
	return int(q.writePos.Load() - q.readPos.Load())
}

// Cap reports the ring's fixed capacity.
func (q *Queue) Cap() int {
	return len(q.data)
}

// Dropped reports the number of events dropped to overflow since
// construction.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
