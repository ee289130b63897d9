package events

import "sync"

// DefaultBufferCapacity is the number of undelivered events held for retry.
const DefaultBufferCapacity = 1000

// Buffer is a bounded in-memory FIFO of events awaiting redelivery.
//
// When full, appending drops the oldest buffered event. That is an explicit
// data-loss policy under sustained broker outage, not backpressure: the
// publish path must never block or fail the caller. The buffer is shared
// between the publish path and the retry loop, so all access is
// mutex-guarded.
type Buffer struct {
	mu       sync.Mutex
	events   []Event
	capacity int
	dropped  uint64
}

// NewBuffer creates a Buffer with the given capacity.
// Non-positive capacities fall back to DefaultBufferCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &Buffer{
		events:   make([]Event, 0, capacity),
		capacity: capacity,
	}
}

// Append adds an event to the tail of the buffer, dropping the oldest
// buffered event if the buffer is at capacity. It reports whether an event
// was dropped.
func (b *Buffer) Append(e Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := false
	if len(b.events) >= b.capacity {
		b.events = b.events[1:]
		b.dropped++
		dropped = true
	}
	b.events = append(b.events, e)
	return dropped
}

// DrainAll removes and returns the entire current contents of the buffer in
// FIFO order. Events appended after the snapshot is taken are not included.
func (b *Buffer) DrainAll() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	drained := b.events
	b.events = make([]Event, 0, b.capacity)
	return drained
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Dropped returns the total number of events discarded due to overflow.
func (b *Buffer) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
