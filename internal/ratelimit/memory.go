package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps windows in process memory. Each key has its own lock so
// concurrent bursts from one client never lose increments; windows that
// elapsed are swept at most once per window length.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]*window
	lastSweep time.Time
	now       func() time.Time
}

type window struct {
	mu      sync.Mutex
	start   time.Time
	count   int64
	evicted bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]*window{}, now: time.Now}
}

func (s *MemoryStore) Hit(_ context.Context, key string, length time.Duration) (int64, time.Time, error) {
	for {
		now := s.now()
		w := s.entry(key, now, length)

		w.mu.Lock()
		if w.evicted {
			w.mu.Unlock()
			continue
		}
		if now.Sub(w.start) >= length {
			w.start = now
			w.count = 0
		}
		w.count++
		count, resetAt := w.count, w.start.Add(length)
		w.mu.Unlock()

		return count, resetAt, nil
	}
}

func (s *MemoryStore) entry(key string, now time.Time, length time.Duration) *window {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= length {
		s.sweep(now, length)
		s.lastSweep = now
	}
	w, ok := s.entries[key]
	if !ok {
		w = &window{start: now}
		s.entries[key] = w
	}
	return w
}

// sweep drops elapsed windows. Callers hold s.mu.
func (s *MemoryStore) sweep(now time.Time, length time.Duration) {
	for k, w := range s.entries {
		w.mu.Lock()
		if now.Sub(w.start) >= length {
			w.evicted = true
			delete(s.entries, k)
		}
		w.mu.Unlock()
	}
}

// Len reports how many client windows are tracked.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
