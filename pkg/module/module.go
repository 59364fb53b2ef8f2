package module

import (
	"github.com/burrowhq/burrow/pkg/core"
	"github.com/burrowhq/burrow/pkg/events"
)

// Handle records what a module attached for one tenant so it can be
// detached safely. It is a plain value, not a back-reference into the bus.
type Handle struct {
	ModuleKey string
	TenantID  string

	// what the module subscribed to (so detach can unsubscribe)
	Subscriptions []events.Subscription

	// providers registered by the module
	ProviderNames []string

	// service keys the module bound for the tenant
	ServiceKeys []string
}

// Release undoes every effect recorded in the handle: unsubscribes each
// subscription, deregisters the providers, and clears the tenant's bindings
// for the recorded service keys. Modules call this from Detach.
func (h *Handle) Release(app *core.App) {
	for _, sub := range h.Subscriptions {
		app.Bus.Unsubscribe(sub.Name, sub.Handler)
	}
	for _, name := range h.ProviderNames {
		app.Registry.DeregisterProvider(name)
	}
	for _, key := range h.ServiceKeys {
		app.Registry.RemoveTenantBinding(h.TenantID, key)
	}
}

// Module is a bundle of providers, subscriptions and service bindings that
// can be attached to a tenant at runtime.
//
// Attach must register every resource it consumes through the provided core
// and record it in the returned handle. Detach must undo every recorded
// effect; Handle.Release does this for the standard three.
type Module interface {
	ModuleKey() string
	Attach(app *core.App, tenantID string, cfg map[string]any) (*Handle, error)
	Detach(app *core.App, handle *Handle) error
}
