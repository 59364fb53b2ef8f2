/*
Package idempotency stores service results by idempotency key.

The store contract backs the idempotency middleware: results are cached with
a TTL regardless of status (errors and deferred tickets coalesce exactly
like successes), and a best-effort lock per key prevents concurrent
duplicate work. Expired entries are treated as absent and evicted lazily on
read.

MemoryStore is the reference implementation — one mutex covering both the
result and lock maps. BoltStore persists the same contract to bbolt for
deployments that want cached results to survive a restart. Replacement
implementations must honor the contract verbatim.
*/
package idempotency
