/*
Package runtime holds the control plane of Burrow: runtime contexts, tenant
configuration and its live application.

A Context is what a transport constructs per incoming request — tenant,
generated request/trace IDs, locale, tags — and from which it derives a
service Call with timeout, attempt budget and optional idempotency key.

ConfigManager.ApplyTenantConfig is the runtime reconfiguration step: it
atomically replaces the tenant's service bindings, refreshes the tenant's
module set through the module manager (detaching removed modules,
reattaching desired ones), and publishes config.tenant_updated. The three
steps are deliberately not jointly atomic; callers racing an apply retry at
the transport layer.

Tenant configs come from a ConfigStore. FileConfigStore reads
<dir>/<tenant>.yaml documents; ConfigWatcher watches that directory and
re-applies a tenant on file change, debouncing rapid writes.
*/
package runtime
