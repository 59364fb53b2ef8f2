package middleware

import (
	"context"
	"time"

	"github.com/burrowhq/burrow/pkg/idempotency"
	"github.com/burrowhq/burrow/pkg/log"
	"github.com/burrowhq/burrow/pkg/metrics"
	"github.com/burrowhq/burrow/pkg/types"
)

const (
	// DefaultResultTTL is how long cached results are served
	DefaultResultTTL = 5 * time.Minute

	// DefaultLockTTL bounds how long a crashed call can hold a key lock
	DefaultLockTTL = 30 * time.Second
)

// Idempotency returns a middleware that coalesces duplicate calls by
// idempotency key.
//
// Calls without a key pass through. Otherwise: a cached result is returned
// verbatim (cached errors are re-served as-is); a held lock yields an
// in_progress error without invoking next; an acquired lock runs next,
// caches the result regardless of status, and releases the lock on every
// exit path. A cancelled operation is not cached.
//
// Store failures degrade to uncached execution rather than failing the call.
func Idempotency(store idempotency.Store, resultTTL, lockTTL time.Duration) Middleware {
	logger := log.WithComponent("idempotency")

	if resultTTL <= 0 {
		resultTTL = DefaultResultTTL
	}
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}

	return func(ctx context.Context, op Op, next Next) (types.Result, error) {
		key := op.Call.IdempotencyKey
		if key == "" {
			return next(ctx)
		}

		cached, err := store.Get(key)
		if err != nil {
			logger.Error().Err(err).Str("key", key).Msg("Store lookup failed")
		}
		if cached != nil {
			metrics.IdempotencyHitsTotal.Inc()
			return *cached, nil
		}

		acquired, err := store.Lock(key, lockTTL)
		if err != nil {
			logger.Error().Err(err).Str("key", key).Msg("Lock attempt failed")
		}
		if err == nil && !acquired {
			metrics.IdempotencyLockContentionTotal.Inc()
			return types.ErrorResult(op.Call, types.ErrorInfo{
				Code:      types.CodeInProgress,
				Message:   "Operation in progress",
				Retryable: true,
			}, types.NowMS(), 1), nil
		}

		defer func() {
			if err := store.Unlock(key); err != nil {
				logger.Error().Err(err).Str("key", key).Msg("Unlock failed")
			}
		}()

		res, err := next(ctx)
		if err != nil {
			// Did not complete (cancellation or terminal failure): the
			// executor classifies it, nothing to cache.
			return res, err
		}

		if putErr := store.Put(key, res, resultTTL); putErr != nil {
			logger.Error().Err(putErr).Str("key", key).Msg("Store write failed")
		}
		return res, nil
	}
}
