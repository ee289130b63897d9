package notification

import (
	"container/list"
	"sync"
	"time"
)

// Seen-store sizing defaults.
const (
	DefaultCapacity = 10000
	DefaultTTL      = time.Hour
)

// SeenStore tracks which event IDs have already produced a notification.
// Implementations must be safe for concurrent use.
type SeenStore interface {
	// Seen reports whether the event ID was recorded within the TTL window.
	Seen(id string) bool

	// Remember records the event ID as processed at the current time.
	Remember(id string)
}

// seenEntry pairs an event ID with its first-seen timestamp.
type seenEntry struct {
	id     string
	seenAt time.Time
}

// TTLStore is a bounded, TTL'd SeenStore. It keeps insertion order so
// expiry cleanup can walk from the oldest entry and stop at the first
// non-expired one; insertion order is monotonic in time because entries
// are only ever appended with the current timestamp.
//
// The store is purely in-memory and process-lifetime only: duplicates
// across restarts are not caught.
type TTLStore struct {
	mu       sync.Mutex
	byID     map[string]*list.Element
	order    *list.List // of *seenEntry, oldest first
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewTTLStore creates a TTLStore with the given capacity and TTL.
// Non-positive values fall back to the defaults (10,000 entries, 1 hour).
func NewTTLStore(capacity int, ttl time.Duration) *TTLStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTLStore{
		byID:     make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Seen reports whether the event ID was recorded less than TTL ago.
// An expired entry is removed on the spot and reported as unseen.
func (s *TTLStore) Seen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.byID[id]
	if !ok {
		return false
	}

	entry := elem.Value.(*seenEntry)
	if s.now().Sub(entry.seenAt) >= s.ttl {
		s.remove(elem)
		return false
	}
	return true
}

// Remember records the event ID at the current time. Before inserting it
// evicts the expired prefix, then drops the single oldest entry if the
// store is at capacity.
func (s *TTLStore) Remember(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for elem := s.order.Front(); elem != nil; {
		entry := elem.Value.(*seenEntry)
		if now.Sub(entry.seenAt) < s.ttl {
			break
		}
		next := elem.Next()
		s.remove(elem)
		elem = next
	}

	if existing, ok := s.byID[id]; ok {
		// Refresh: move to the tail with a new timestamp so insertion
		// order stays monotonic in time.
		s.remove(existing)
	}

	if s.order.Len() >= s.capacity {
		s.remove(s.order.Front())
	}

	s.byID[id] = s.order.PushBack(&seenEntry{id: id, seenAt: now})
}

// Len returns the number of tracked entries.
func (s *TTLStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// remove deletes an entry from both indexes. Caller holds the lock.
func (s *TTLStore) remove(elem *list.Element) {
	entry := elem.Value.(*seenEntry)
	delete(s.byID, entry.id)
	s.order.Remove(elem)
}
