/*
Package metrics provides Prometheus instrumentation for the Burrow runtime.

Collectors cover the dispatch path (call counts, durations, retries, deferred
tickets), the event bus (published events, isolated handler failures), the
idempotency middleware (cache hits, lock contention), module lifecycle and
config applies, and store sweeping. All collectors are registered at package
init; Handler exposes the standard promhttp endpoint.

Label cardinality is kept low on purpose: operations and event names are
bounded sets, tenants appear only on the module gauge. Request and trace IDs
never become labels.
*/
package metrics
