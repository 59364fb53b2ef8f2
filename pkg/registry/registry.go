package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/burrowhq/burrow/pkg/log"
	"github.com/rs/zerolog"
)

var (
	// ErrServiceNotConfigured is returned when a tenant has no binding for
	// the requested service key
	ErrServiceNotConfigured = errors.New("service not configured")

	// ErrServiceNotRegistered is returned when a binding names a provider
	// that is absent from the provider map
	ErrServiceNotRegistered = errors.New("provider not registered")
)

// Binding maps a service key to a provider instance name for a tenant.
// Example: TextComposer -> "stencil_v1"
type Binding struct {
	Provider string
}

// Registry is the in-memory service registry.
//
// Two disjoint maps: provider name -> provider instance, and tenant ->
// service key -> binding. The registry does not assume where config is
// stored; providers live in external modules and the core only stores
// references.
type Registry struct {
	mu sync.RWMutex

	providers map[string]any
	bindings  map[string]map[string]Binding

	logger zerolog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]any),
		bindings:  make(map[string]map[string]Binding),
		logger:    log.WithComponent("registry"),
	}
}

// RegisterProvider registers a provider instance by name. Registering an
// existing name overwrites it.
func (r *Registry) RegisterProvider(name string, provider any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider

	r.logger.Debug().Str("provider", name).Msg("Provider registered")
}

// DeregisterProvider removes a provider instance. No-op if absent.
func (r *Registry) DeregisterProvider(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, name)
}

// SetTenantBindings atomically replaces the tenant's binding map.
// Concurrent resolves observe either the prior or the new map, never a
// half-updated one.
func (r *Registry) SetTenantBindings(tenantID string, bindings map[string]Binding) {
	m := make(map[string]Binding, len(bindings))
	for k, v := range bindings {
		m[k] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[tenantID] = m
}

// RemoveTenantBinding clears one service key binding for a tenant.
// No-op if the tenant or key is absent.
func (r *Registry) RemoveTenantBinding(tenantID, serviceKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.bindings[tenantID]
	if m == nil {
		return
	}
	delete(m, serviceKey)
	if len(m) == 0 {
		delete(r.bindings, tenantID)
	}
}

// TenantBindings returns a copy of the tenant's current binding map
func (r *Registry) TenantBindings(tenantID string) map[string]Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := r.bindings[tenantID]
	out := make(map[string]Binding, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Resolve returns the provider bound to the service key for the tenant.
//
// Fails with ErrServiceNotConfigured when the tenant has no map or no entry
// for the key, and with ErrServiceNotRegistered when the binding names an
// unknown provider. Both represent misconfiguration, not runtime failure,
// and are raised to the caller rather than wrapped into a result.
func (r *Registry) Resolve(tenantID, serviceKey string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenantMap := r.bindings[tenantID]
	binding, ok := tenantMap[serviceKey]
	if !ok {
		return nil, fmt.Errorf("%w: service %q for tenant %q",
			ErrServiceNotConfigured, serviceKey, tenantID)
	}

	provider, ok := r.providers[binding.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: provider %q", ErrServiceNotRegistered, binding.Provider)
	}

	return provider, nil
}

// ServiceKey returns the stable string identity of a capability interface,
// derived from its declared name. Callers may always use explicit string
// keys instead to avoid coupling to type names.
func ServiceKey[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return t.Name()
}

// ResolveAs resolves and type-asserts the provider to the capability type
func ResolveAs[T any](r *Registry, tenantID, serviceKey string) (T, error) {
	var zero T

	p, err := r.Resolve(tenantID, serviceKey)
	if err != nil {
		return zero, err
	}

	typed, ok := p.(T)
	if !ok {
		return zero, fmt.Errorf("%w: provider bound to %q does not implement %s",
			ErrServiceNotRegistered, serviceKey, reflect.TypeOf((*T)(nil)).Elem())
	}
	return typed, nil
}
