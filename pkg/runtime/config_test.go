package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/burrowhq/burrow/pkg/core"
	"github.com/burrowhq/burrow/pkg/events"
	"github.com/burrowhq/burrow/pkg/executor"
	"github.com/burrowhq/burrow/pkg/module"
	"github.com/burrowhq/burrow/pkg/modules/texttemplates"
	"github.com/burrowhq/burrow/pkg/registry"
	"github.com/burrowhq/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHarness() (*core.App, *module.Manager, *ConfigManager) {
	app := core.New()
	mgr := module.NewManager(app)
	mgr.Register(texttemplates.New())
	return app, mgr, NewConfigManager(app, mgr)
}

func composeOnce(t *testing.T, app *core.App, tenantID string) (types.Result, error) {
	t.Helper()

	key := registry.ServiceKey[types.TextComposer]()
	composer, err := registry.ResolveAs[types.TextComposer](app.Registry, tenantID, key)
	if err != nil {
		return types.Result{}, err
	}

	rc := NewContext(tenantID)
	call := rc.ServiceCall(WithTimeout(time.Second), WithMaxAttempts(1))

	return app.Executor.Call(context.Background(), executor.Request{
		ServiceKey: key,
		Call:       call,
		OpName:     "text_compose",
		Fn: func(ctx context.Context) (types.Result, error) {
			return composer.Compose(ctx, call, types.TextComposeIn{
				Locale:      rc.Locale,
				TemplateKey: "hello",
				Variables:   map[string]any{"name": "Ada"},
			})
		},
	})
}

func tenantApply(services map[string]string, modules map[string]map[string]any) Apply {
	return Apply{
		TenantID:  "tenant_demo",
		TraceID:   types.NewID("trc"),
		RequestID: types.NewID("req"),
		Services:  services,
		Modules:   modules,
	}
}

func moduleCfg() map[string]map[string]any {
	return map[string]map[string]any{
		texttemplates.ModuleKey: {
			"provider_name": "stencil_v1",
			"templates": map[string]any{
				"hello": "Hello, {{ .name }}!",
			},
		},
	}
}

func TestApplyEnablesServiceAndModule(t *testing.T) {
	app, _, cm := testHarness()

	var configEvents []events.Envelope
	app.Bus.Subscribe(events.Subscription{
		Name: TenantUpdatedEvent,
		Handler: func(ctx context.Context, evt events.Envelope) error {
			configEvents = append(configEvents, evt)
			return nil
		},
		Priority:      10,
		IsolateErrors: true,
	})

	key := registry.ServiceKey[types.TextComposer]()
	require.NoError(t, cm.ApplyTenantConfig(context.Background(), tenantApply(
		map[string]string{key: "stencil_v1"},
		moduleCfg(),
	)))

	res, err := composeOnce(t, app, "tenant_demo")
	require.NoError(t, err)
	require.Equal(t, types.StatusOK, res.Status)
	assert.Equal(t, "Hello, Ada!", res.Data.(types.TextComposeOut).Text)

	require.Len(t, configEvents, 1)
	evt := configEvents[0]
	assert.Equal(t, events.KindSystem, evt.Kind)
	assert.Equal(t, "tenant_demo", evt.TenantID)
	services := evt.Payload["services"].(map[string]any)
	assert.Equal(t, "stencil_v1", services[key])
}

func TestApplyModuleDisableKeepsServiceBinding(t *testing.T) {
	app, _, cm := testHarness()
	key := registry.ServiceKey[types.TextComposer]()

	require.NoError(t, cm.ApplyTenantConfig(context.Background(), tenantApply(
		map[string]string{key: "stencil_v1"},
		moduleCfg(),
	)))

	// Disable the module only; the binding stays because this module did
	// not bind the key itself, but the provider it registered is
	// deregistered through its handle
	require.NoError(t, cm.ApplyTenantConfig(context.Background(), tenantApply(
		map[string]string{key: "stencil_v1"},
		map[string]map[string]any{},
	)))

	assert.Zero(t, app.Bus.SubscriberCount("service.text_compose.ok"),
		"module observers must be unsubscribed after disable")

	_, err := app.Registry.Resolve("tenant_demo", key)
	assert.ErrorIs(t, err, registry.ErrServiceNotRegistered,
		"binding survives but the module's provider is deregistered")
}

func TestApplyServiceDisable(t *testing.T) {
	app, _, cm := testHarness()
	key := registry.ServiceKey[types.TextComposer]()

	require.NoError(t, cm.ApplyTenantConfig(context.Background(), tenantApply(
		map[string]string{key: "stencil_v1"},
		moduleCfg(),
	)))

	require.NoError(t, cm.ApplyTenantConfig(context.Background(), tenantApply(
		map[string]string{},
		map[string]map[string]any{},
	)))

	_, err := composeOnce(t, app, "tenant_demo")
	assert.ErrorIs(t, err, registry.ErrServiceNotConfigured)
}

func TestApplyRebindsToNewProvider(t *testing.T) {
	app, _, cm := testHarness()
	key := registry.ServiceKey[types.TextComposer]()

	require.NoError(t, cm.ApplyTenantConfig(context.Background(), tenantApply(
		map[string]string{key: "stencil_v1"},
		moduleCfg(),
	)))

	v2 := moduleCfg()
	v2[texttemplates.ModuleKey]["provider_name"] = "stencil_v2"
	require.NoError(t, cm.ApplyTenantConfig(context.Background(), tenantApply(
		map[string]string{key: "stencil_v2"},
		v2,
	)))

	res, err := composeOnce(t, app, "tenant_demo")
	require.NoError(t, err)
	require.Equal(t, types.StatusOK, res.Status)
	assert.Equal(t, "stencil_v2", res.Meta.ProviderName)
}

func TestNewContextDefaults(t *testing.T) {
	rc := NewContext("tenant_demo")

	assert.Equal(t, "tenant_demo", rc.TenantID)
	assert.NotEmpty(t, rc.RequestID)
	assert.NotEmpty(t, rc.TraceID)
	assert.NotEqual(t, rc.RequestID, rc.TraceID)
	assert.Equal(t, "en", rc.Locale)
	assert.NotZero(t, rc.StartedAt)
}

func TestServiceCallDerivation(t *testing.T) {
	rc := NewContext("tenant_demo", WithLocale("de"), WithTags(map[string]string{"channel": "web"}))
	call := rc.ServiceCall(
		WithTimeout(time.Second),
		WithMaxAttempts(3),
		WithIdempotencyKey("K"),
	)

	assert.Equal(t, rc.TenantID, call.TenantID)
	assert.Equal(t, rc.RequestID, call.RequestID)
	assert.Equal(t, rc.TraceID, call.TraceID)
	assert.Equal(t, time.Second, call.Timeout)
	assert.Equal(t, 3, call.MaxAttempts)
	assert.Equal(t, "K", call.IdempotencyKey)
	assert.Equal(t, "web", call.Tags["channel"])
}
