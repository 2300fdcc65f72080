package counter

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process counter backend: a mutex-guarded map with
// per-key expiry checked lazily and swept periodically.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	done    chan struct{}
	once    sync.Once
	now     func() time.Time
}

type memEntry struct {
	value     int64
	expiresAt time.Time // zero means no expiry
}

// NewMemory creates an in-process counter store and starts its sweeper.
func NewMemory() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memEntry),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go s.sweep()
	return s
}

// WithNow sets a fixed clock for testing.
func (s *MemoryStore) WithNow(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			now := s.now()
			for k, e := range s.entries {
				if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
					delete(s.entries, k)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Close stops the sweeper goroutine.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.done) })
}

// live returns the entry for key, dropping it first if expired.
func (s *MemoryStore) live(key string) *memEntry {
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil
	}
	return e
}

func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(key)
	if e == nil {
		e = &memEntry{}
		s.entries[key] = e
	}
	e.value++
	return e.value, nil
}

func (s *MemoryStore) Decr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(key)
	if e == nil {
		e = &memEntry{}
		s.entries[key] = e
	}
	e.value--
	return e.value, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(key)
	if e == nil {
		return 0, false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.live(key); e != nil {
		e.expiresAt = s.now().Add(ttl)
	}
	return nil
}

func (s *MemoryStore) Name() string { return "memory" }
