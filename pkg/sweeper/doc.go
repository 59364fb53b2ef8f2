/*
Package sweeper evicts expired entries from the in-memory TTL stores.

The idempotency and deferred stores expire entries lazily on read, which is
correct but lets never-read entries accumulate. The sweeper runs a periodic
eviction cycle over any store implementing Sweepable, bounding memory
between reads. It changes no observable store behavior.
*/
package sweeper
