package cache

import (
	"sync"
	"time"
)

// Entry is one cached payload with its write time and time-to-live.
type Entry struct {
	Data      any
	Timestamp time.Time
	TTL       time.Duration
}

// Lookup is the result of a Get: the payload, whether it outlived its TTL,
// and how long ago it was written.
type Lookup struct {
	Data  any
	Stale bool
	Age   time.Duration
}

// Store is an in-memory TTL cache. Entries are never evicted; a stale entry
// stays readable through GetStale until it is overwritten or cleared.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock is NewStore with an injected clock.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		entries: make(map[string]Entry),
		now:     now,
	}
}

// Set unconditionally overwrites key.
func (s *Store) Set(key string, data any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{Data: data, Timestamp: s.now(), TTL: ttl}
}

// Get returns the entry for key and whether its age exceeds its TTL.
func (s *Store) Get(key string) (Lookup, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return Lookup{}, false
	}
	age := s.now().Sub(entry.Timestamp)
	return Lookup{Data: entry.Data, Stale: age > entry.TTL, Age: age}, true
}

// GetStale returns the last value set for key regardless of age.
func (s *Store) GetStale(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return entry.Data, true
}

func (s *Store) HasFresh(key string) bool {
	l, ok := s.Get(key)
	return ok && !l.Stale
}

// Age reports how long ago key was written.
func (s *Store) Age(key string) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return 0, false
	}
	return s.now().Sub(entry.Timestamp), true
}

func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
}

// Len is the number of keys held, fresh or stale.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// AgeSeconds floors an age to whole seconds for JSON bookkeeping fields.
func AgeSeconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
