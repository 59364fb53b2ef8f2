package module

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/burrowhq/burrow/pkg/core"
	"github.com/burrowhq/burrow/pkg/events"
	"github.com/burrowhq/burrow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider stands in for a capability implementation
type fakeProvider struct {
	name string
}

// fakeModule registers a provider, binds a service key and subscribes one
// handler, recording everything in its handle
type fakeModule struct {
	key string

	attachCount int
	detachCount int
	handled     int
	attachErr   error
}

func (m *fakeModule) ModuleKey() string { return m.key }

func (m *fakeModule) Attach(app *core.App, tenantID string, cfg map[string]any) (*Handle, error) {
	if m.attachErr != nil {
		return nil, m.attachErr
	}
	m.attachCount++

	handle := &Handle{ModuleKey: m.key, TenantID: tenantID}

	providerName := m.key + "_provider"
	app.Registry.RegisterProvider(providerName, &fakeProvider{name: providerName})
	handle.ProviderNames = append(handle.ProviderNames, providerName)

	bindings := app.Registry.TenantBindings(tenantID)
	bindings["DemoService"] = registry.Binding{Provider: providerName}
	app.Registry.SetTenantBindings(tenantID, bindings)
	handle.ServiceKeys = append(handle.ServiceKeys, "DemoService")

	sub := events.Subscription{
		Name: "service.demo_op.ok",
		Handler: func(ctx context.Context, evt events.Envelope) error {
			m.handled++
			return nil
		},
		Priority:      50,
		IsolateErrors: true,
	}
	app.Bus.Subscribe(sub)
	handle.Subscriptions = append(handle.Subscriptions, sub)

	return handle, nil
}

func (m *fakeModule) Detach(app *core.App, handle *Handle) error {
	m.detachCount++
	handle.Release(app)
	return nil
}

func publishDemoOK(t *testing.T, app *core.App) {
	t.Helper()
	require.NoError(t, app.Bus.Publish(context.Background(), events.Envelope{
		Name:     "service.demo_op.ok",
		Kind:     events.KindService,
		TenantID: "tenant_a",
	}))
}

func TestAttachUnknownModule(t *testing.T) {
	app := core.New()
	mgr := NewManager(app)

	err := mgr.Attach("tenant_a", "missing", nil)
	assert.ErrorIs(t, err, ErrModuleNotRegistered)
}

func TestAttachRegistersResources(t *testing.T) {
	app := core.New()
	mgr := NewManager(app)
	mod := &fakeModule{key: "demo"}
	mgr.Register(mod)

	require.NoError(t, mgr.Attach("tenant_a", "demo", nil))

	_, err := app.Registry.Resolve("tenant_a", "DemoService")
	assert.NoError(t, err)

	publishDemoOK(t, app)
	assert.Equal(t, 1, mod.handled)
	assert.Equal(t, []string{"demo"}, mgr.Attached("tenant_a"))
}

func TestDetachCleanliness(t *testing.T) {
	app := core.New()
	mgr := NewManager(app)
	mod := &fakeModule{key: "demo"}
	mgr.Register(mod)

	require.NoError(t, mgr.Attach("tenant_a", "demo", nil))
	require.NoError(t, mgr.Detach("tenant_a", "demo"))

	// Subscriptions are gone: publishing invokes nothing from the module
	publishDemoOK(t, app)
	assert.Zero(t, mod.handled)

	// Binding is cleared
	_, err := app.Registry.Resolve("tenant_a", "DemoService")
	assert.ErrorIs(t, err, registry.ErrServiceNotConfigured)

	// Handle index entry is dropped
	assert.Empty(t, mgr.Attached("tenant_a"))
}

func TestDetachMissingHandleIsNoop(t *testing.T) {
	app := core.New()
	mgr := NewManager(app)
	mgr.Register(&fakeModule{key: "demo"})

	assert.NoError(t, mgr.Detach("tenant_a", "demo"))
}

func TestAttachErrorPropagates(t *testing.T) {
	app := core.New()
	mgr := NewManager(app)
	mgr.Register(&fakeModule{key: "demo", attachErr: errors.New("bad config")})

	err := mgr.Attach("tenant_a", "demo", nil)
	require.Error(t, err)
	assert.Empty(t, mgr.Attached("tenant_a"))
}

func TestRefreshDetachesRemoved(t *testing.T) {
	app := core.New()
	mgr := NewManager(app)
	modA := &fakeModule{key: "mod_a"}
	modB := &fakeModule{key: "mod_b"}
	mgr.Register(modA)
	mgr.Register(modB)

	require.NoError(t, mgr.Attach("tenant_a", "mod_a", nil))
	require.NoError(t, mgr.Attach("tenant_a", "mod_b", nil))

	require.NoError(t, mgr.Refresh("tenant_a", map[string]map[string]any{
		"mod_a": {},
	}))

	assert.Equal(t, []string{"mod_a"}, mgr.Attached("tenant_a"))
	assert.Equal(t, 1, modB.detachCount)
}

func TestRefreshReattachesDesired(t *testing.T) {
	app := core.New()
	mgr := NewManager(app)
	mod := &fakeModule{key: "demo"}
	mgr.Register(mod)

	require.NoError(t, mgr.Attach("tenant_a", "demo", nil))
	require.NoError(t, mgr.Refresh("tenant_a", map[string]map[string]any{
		"demo": {},
	}))

	// Unconditional reattach: one detach, two attaches total
	assert.Equal(t, 1, mod.detachCount)
	assert.Equal(t, 2, mod.attachCount)
	assert.Equal(t, []string{"demo"}, mgr.Attached("tenant_a"))
}

func TestRefreshSkipsUnknownModules(t *testing.T) {
	app := core.New()
	mgr := NewManager(app)
	mgr.Register(&fakeModule{key: "demo"})

	require.NoError(t, mgr.Refresh("tenant_a", map[string]map[string]any{
		"demo":    {},
		"unknown": {},
	}))

	attached := mgr.Attached("tenant_a")
	sort.Strings(attached)
	assert.Equal(t, []string{"demo"}, attached)
}
