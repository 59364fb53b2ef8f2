/*
Package module manages pluggable module bundles per tenant.

A module bundles providers, event subscriptions and service bindings. On
attach it registers everything it consumes through the core app and records
the effects in a Handle; on detach it undoes them all — unsubscribe,
deregister, clear bindings (Handle.Release covers the standard three).

The Manager keeps a catalog of registered modules and an index of attached
handles per (tenant, module). Refresh reconciles a tenant against a desired
module set, detaching absentees and reattaching the rest, which is how
config applies hot-swap tenant behavior at runtime.
*/
package module
