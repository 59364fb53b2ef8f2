package texttemplates

import (
	"context"

	"github.com/burrowhq/burrow/pkg/core"
	"github.com/burrowhq/burrow/pkg/events"
	"github.com/burrowhq/burrow/pkg/log"
	"github.com/burrowhq/burrow/pkg/module"
	"github.com/burrowhq/burrow/pkg/providers/textstencil"
	"github.com/burrowhq/burrow/pkg/registry"
	"github.com/burrowhq/burrow/pkg/types"
)

// ModuleKey identifies this module in tenant configs
const ModuleKey = "text_templates"

// Config is the module's cfg blob schema
type Config struct {
	ProviderName string
	Templates    map[string]string

	// BindService also binds the TextComposer service key to the provider
	// for the tenant. Leave false when bindings are driven by the tenant's
	// services config instead.
	BindService bool
}

// ParseConfig reads the module config from a raw cfg blob
func ParseConfig(cfg map[string]any) Config {
	out := Config{
		ProviderName: "stencil_v1",
		Templates:    make(map[string]string),
	}

	if name, ok := cfg["provider_name"].(string); ok && name != "" {
		out.ProviderName = name
	}
	if bind, ok := cfg["bind_service"].(bool); ok {
		out.BindService = bind
	}
	if raw, ok := cfg["templates"].(map[string]string); ok {
		for k, v := range raw {
			out.Templates[k] = v
		}
	} else if raw, ok := cfg["templates"].(map[string]any); ok {
		// YAML decodes nested maps as map[string]any
		for k, v := range raw {
			if s, ok := v.(string); ok {
				out.Templates[k] = s
			}
		}
	}

	return out
}

// Module wires a textstencil TextComposer provider into a tenant: it
// registers the provider, optionally binds the service key, and subscribes
// observers to the compose lifecycle events.
type Module struct{}

// New creates the module
func New() *Module {
	return &Module{}
}

// ModuleKey returns the stable module key
func (m *Module) ModuleKey() string {
	return ModuleKey
}

// Attach registers the provider and subscriptions for the tenant and
// records them in the returned handle
func (m *Module) Attach(app *core.App, tenantID string, cfg map[string]any) (*module.Handle, error) {
	typed := ParseConfig(cfg)

	handle := &module.Handle{
		ModuleKey: ModuleKey,
		TenantID:  tenantID,
	}

	provider := textstencil.NewComposer(
		textstencil.Config{Templates: typed.Templates},
		typed.ProviderName,
	)
	app.Registry.RegisterProvider(typed.ProviderName, provider)
	handle.ProviderNames = append(handle.ProviderNames, typed.ProviderName)

	if typed.BindService {
		key := registry.ServiceKey[types.TextComposer]()
		bindings := app.Registry.TenantBindings(tenantID)
		bindings[key] = registry.Binding{Provider: typed.ProviderName}
		app.Registry.SetTenantBindings(tenantID, bindings)
		handle.ServiceKeys = append(handle.ServiceKeys, key)
	}

	for _, name := range []string{"service.text_compose.ok", "service.text_compose.error"} {
		sub := events.Subscription{
			Name:          name,
			Handler:       observeComposeEvent,
			Priority:      50,
			IsolateErrors: true,
		}
		app.Bus.Subscribe(sub)
		handle.Subscriptions = append(handle.Subscriptions, sub)
	}

	return handle, nil
}

// Detach undoes everything recorded in the handle
func (m *Module) Detach(app *core.App, handle *module.Handle) error {
	handle.Release(app)
	return nil
}

// observeComposeEvent logs compose lifecycle events for operators
func observeComposeEvent(_ context.Context, evt events.Envelope) error {
	componentLogger := log.WithComponent("text_templates")
	componentLogger.Debug().
		Str("event", evt.Name).
		Str("tenant_id", evt.TenantID).
		Interface("payload", evt.Payload).
		Msg("Compose event")
	return nil
}
