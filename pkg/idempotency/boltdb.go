package idempotency

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/burrowhq/burrow/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketResults = []byte("idempotency_results")
	bucketLocks   = []byte("idempotency_locks")
)

type boltEntry struct {
	ExpiresAt int64        `json:"expires_at"`
	Result    types.Result `json:"result"`
}

type boltLock struct {
	ExpiresAt int64 `json:"expires_at"`
}

// BoltStore implements Store on a bbolt database. Results survive process
// restarts for the duration of their TTL.
//
// Values round-trip through JSON, so Data comes back as generic decoded
// values (map[string]any, []any) rather than the provider's concrete types,
// and Stream channels are not persisted.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) a bbolt-backed store on an existing DB
// handle, creating its buckets if needed
func NewBoltStore(db *bolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketResults, bucketLocks} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Get returns the non-expired cached result for the key, or nil
func (s *BoltStore) Get(key string) (*types.Result, error) {
	var res *types.Result
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}

		var entry boltEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return err
		}
		if types.NowMS() >= entry.ExpiresAt {
			return b.Delete([]byte(key))
		}

		res = &entry.Result
		return nil
	})
	return res, err
}

// Put stores the result with the given TTL
func (s *BoltStore) Put(key string, res types.Result, ttl time.Duration) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(boltEntry{
			ExpiresAt: types.NowMS() + ttl.Milliseconds(),
			Result:    res,
		})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketResults).Put([]byte(key), data)
	})
}

// Lock acquires a best-effort lock on the key
func (s *BoltStore) Lock(key string, ttl time.Duration) (bool, error) {
	acquired := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLocks)
		now := types.NowMS()

		if data := b.Get([]byte(key)); data != nil {
			var lock boltLock
			if err := json.Unmarshal(data, &lock); err != nil {
				return err
			}
			if now < lock.ExpiresAt {
				return nil
			}
		}

		data, err := json.Marshal(boltLock{ExpiresAt: now + ttl.Milliseconds()})
		if err != nil {
			return err
		}
		if err := b.Put([]byte(key), data); err != nil {
			return err
		}
		acquired = true
		return nil
	})
	return acquired, err
}

// Unlock drops the lock unconditionally
func (s *BoltStore) Unlock(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLocks).Delete([]byte(key))
	})
}
