package idempotency

import (
	"sync"
	"time"

	"github.com/burrowhq/burrow/pkg/types"
)

type memoryEntry struct {
	expiresAt int64
	res       types.Result
}

// MemoryStore is the in-memory reference store. A single mutex covers both
// the result map and the lock map; expiry is checked lazily on read.
type MemoryStore struct {
	mu    sync.Mutex
	data  map[string]memoryEntry
	locks map[string]int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string]memoryEntry),
		locks: make(map[string]int64),
	}
}

// Get returns the non-expired cached result for the key, or nil
func (s *MemoryStore) Get(key string) (*types.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	if types.NowMS() >= entry.expiresAt {
		delete(s.data, key)
		return nil, nil
	}

	res := entry.res
	return &res, nil
}

// Put stores the result with the given TTL
func (s *MemoryStore) Put(key string, res types.Result, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = memoryEntry{
		expiresAt: types.NowMS() + ttl.Milliseconds(),
		res:       res,
	}
	return nil
}

// Lock acquires a best-effort lock on the key
func (s *MemoryStore) Lock(key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := types.NowMS()
	if exp, ok := s.locks[key]; ok && now < exp {
		return false, nil
	}
	s.locks[key] = now + ttl.Milliseconds()
	return true, nil
}

// Unlock drops the lock unconditionally
func (s *MemoryStore) Unlock(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

// Sweep evicts expired results and locks, returning the eviction count.
// Lazy expiry on read remains the correctness mechanism; sweeping only
// bounds memory.
func (s *MemoryStore) Sweep(now int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, entry := range s.data {
		if now >= entry.expiresAt {
			delete(s.data, key)
			evicted++
		}
	}
	for key, exp := range s.locks {
		if now >= exp {
			delete(s.locks, key)
			evicted++
		}
	}
	return evicted
}
