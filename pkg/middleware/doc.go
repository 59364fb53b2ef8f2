/*
Package middleware composes ordered middleware chains around service
operations.

A Chain wraps a terminal operation onion-style: middlewares run in insertion
order, each seeing an inert Op descriptor (service key, operation name,
call) and a next function advancing toward the terminal. A middleware either
calls next exactly once — possibly transforming the result — or
short-circuits by synthesizing a result itself.

The package ships the two core middlewares:

  - Logging: structured start/end lines with duration, status and provider
  - Idempotency: duplicate-call coalescing over an idempotency.Store —
    cached results (any status) are re-served verbatim, concurrent
    duplicates get a retryable in_progress error, and the key lock is
    released on every exit path

The executor owns chain invocation; it builds the Op per attempt and runs
the chain under the per-attempt deadline, so every middleware inherits
cancellation from the attempt context.
*/
package middleware
