package runtime

import (
	"context"

	"github.com/burrowhq/burrow/pkg/core"
	"github.com/burrowhq/burrow/pkg/events"
	"github.com/burrowhq/burrow/pkg/log"
	"github.com/burrowhq/burrow/pkg/metrics"
	"github.com/burrowhq/burrow/pkg/module"
	"github.com/burrowhq/burrow/pkg/registry"
	"github.com/burrowhq/burrow/pkg/types"
	"github.com/rs/zerolog"
)

// TenantUpdatedEvent is published after a tenant config apply
const TenantUpdatedEvent = "config.tenant_updated"

// ConfigManager applies tenant configuration at runtime without restart
type ConfigManager struct {
	app     *core.App
	modules *module.Manager
	logger  zerolog.Logger
}

// NewConfigManager creates a config manager
func NewConfigManager(app *core.App, modules *module.Manager) *ConfigManager {
	return &ConfigManager{
		app:     app,
		modules: modules,
		logger:  log.WithComponent("config"),
	}
}

// Apply describes one tenant configuration application
type Apply struct {
	TenantID  string
	TraceID   string
	RequestID string

	// service_key -> provider_name
	Services map[string]string

	// module_key -> module cfg blob
	Modules map[string]map[string]any
}

// ApplyTenantConfig replaces the tenant's binding map, refreshes its module
// set, and publishes a config.tenant_updated system event.
//
// The binding replace is atomic per tenant; the three steps are not jointly
// atomic. A service call racing an apply may see ErrServiceNotConfigured or
// a stale provider and should retry at the transport layer.
func (cm *ConfigManager) ApplyTenantConfig(ctx context.Context, apply Apply) error {
	bindings := make(map[string]registry.Binding, len(apply.Services))
	for key, provider := range apply.Services {
		bindings[key] = registry.Binding{Provider: provider}
	}
	cm.app.Registry.SetTenantBindings(apply.TenantID, bindings)

	if err := cm.modules.Refresh(apply.TenantID, apply.Modules); err != nil {
		return err
	}

	metrics.ConfigAppliesTotal.Inc()
	cm.logger.Info().
		Str("tenant_id", apply.TenantID).
		Int("services", len(apply.Services)).
		Int("modules", len(apply.Modules)).
		Msg("Tenant config applied")

	servicesSnapshot := make(map[string]any, len(apply.Services))
	for k, v := range apply.Services {
		servicesSnapshot[k] = v
	}
	modulesSnapshot := make(map[string]any, len(apply.Modules))
	for k, v := range apply.Modules {
		modulesSnapshot[k] = v
	}

	return cm.app.Bus.Publish(ctx, events.Envelope{
		Name:       TenantUpdatedEvent,
		Kind:       events.KindSystem,
		TenantID:   apply.TenantID,
		EventID:    types.NewID("evt"),
		TraceID:    apply.TraceID,
		OccurredAt: types.NowMS(),
		RequestID:  apply.RequestID,
		Payload: map[string]any{
			"services": servicesSnapshot,
			"modules":  modulesSnapshot,
		},
	})
}
