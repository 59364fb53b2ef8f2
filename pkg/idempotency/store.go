package idempotency

import (
	"time"

	"github.com/burrowhq/burrow/pkg/types"
)

// Store caches service results by idempotency key and arbitrates duplicate
// in-flight work with a best-effort lock.
//
// Contract:
//   - Get returns the non-expired cached result or nil
//   - Put stores the result with expires_at = now + ttl
//   - Lock returns true iff no non-expired lock is held for the key, and on
//     true records a lock expiring after ttl
//   - Unlock drops the lock unconditionally
//
// Results are cached regardless of status: errors and deferred tickets are
// coalesced identically to successes.
type Store interface {
	Get(key string) (*types.Result, error)
	Put(key string, res types.Result, ttl time.Duration) error
	Lock(key string, ttl time.Duration) (bool, error)
	Unlock(key string) error
}
