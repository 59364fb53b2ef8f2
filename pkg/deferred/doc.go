/*
Package deferred tracks tickets for operations whose final result arrives
later.

A provider that cannot answer synchronously returns a deferred result with a
ticket ID. The executor registers the ticket as pending here; when the work
finishes, CompleteDeferred stores the final result against the same ticket
and publishes a *.completed event. Callers holding the ticket read the
outcome with Get while the TTL holds.

MemoryStore is the reference implementation; BoltStore persists the same
two-stage lifecycle to bbolt.
*/
package deferred
