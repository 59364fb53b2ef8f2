package deferred

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/burrowhq/burrow/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var bucketTickets = []byte("deferred_tickets")

// BoltStore persists deferred tickets to bbolt so pending work survives a
// restart. Values round-trip through JSON; Stream channels are not
// persisted.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a bbolt-backed store on an existing DB handle,
// creating its bucket if needed
func NewBoltStore(db *bolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketTickets); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketTickets, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// PutPending registers a pending ticket with the given TTL
func (s *BoltStore) PutPending(ticketID string, ttl time.Duration) error {
	return s.put(Entry{
		TicketID:  ticketID,
		ExpiresAt: types.NowMS() + ttl.Milliseconds(),
	})
}

// Complete stores the final result against the ticket, refreshing its TTL
func (s *BoltStore) Complete(ticketID string, res types.Result, ttl time.Duration) error {
	return s.put(Entry{
		TicketID:  ticketID,
		Result:    &res,
		ExpiresAt: types.NowMS() + ttl.Milliseconds(),
	})
}

// Get returns the current entry for the ticket, or nil when absent/expired
func (s *BoltStore) Get(ticketID string) (*Entry, error) {
	var entry *Entry
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTickets)
		data := b.Get([]byte(ticketID))
		if data == nil {
			return nil
		}

		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		if types.NowMS() >= e.ExpiresAt {
			return b.Delete([]byte(ticketID))
		}

		entry = &e
		return nil
	})
	return entry, err
}

func (s *BoltStore) put(entry Entry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketTickets).Put([]byte(entry.TicketID), data)
	})
}
