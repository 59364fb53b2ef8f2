package deferred

import (
	"sync"
	"time"

	"github.com/burrowhq/burrow/pkg/types"
)

// MemoryStore is the in-memory reference deferred store. A single mutex
// guards the ticket map; expiry is checked lazily on read.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]Entry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Entry),
	}
}

// PutPending registers a pending ticket with the given TTL
func (s *MemoryStore) PutPending(ticketID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[ticketID] = Entry{
		TicketID:  ticketID,
		ExpiresAt: types.NowMS() + ttl.Milliseconds(),
	}
	return nil
}

// Complete stores the final result against the ticket, refreshing its TTL
func (s *MemoryStore) Complete(ticketID string, res types.Result, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[ticketID] = Entry{
		TicketID:  ticketID,
		Result:    &res,
		ExpiresAt: types.NowMS() + ttl.Milliseconds(),
	}
	return nil
}

// Get returns the current entry for the ticket, or nil when absent/expired
func (s *MemoryStore) Get(ticketID string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[ticketID]
	if !ok {
		return nil, nil
	}
	if types.NowMS() >= entry.ExpiresAt {
		delete(s.data, ticketID)
		return nil, nil
	}
	return &entry, nil
}

// Sweep evicts expired tickets, returning the eviction count
func (s *MemoryStore) Sweep(now int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for ticketID, entry := range s.data {
		if now >= entry.ExpiresAt {
			delete(s.data, ticketID)
			evicted++
		}
	}
	return evicted
}
