package runtime

import (
	"time"

	"github.com/burrowhq/burrow/pkg/types"
)

// Context identifies one logical flow through the runtime: the tenant, a
// generated request/trace pair, and call defaults
type Context struct {
	TenantID  string
	RequestID string
	TraceID   string
	StartedAt int64

	Locale string
	Tags   map[string]string
}

// ContextOption customizes a new runtime context
type ContextOption func(*Context)

// WithLocale sets the context locale
func WithLocale(locale string) ContextOption {
	return func(c *Context) { c.Locale = locale }
}

// WithTags sets the context tags (safe metadata only, no secrets)
func WithTags(tags map[string]string) ContextOption {
	return func(c *Context) { c.Tags = tags }
}

// NewContext creates a runtime context with fresh request and trace IDs
func NewContext(tenantID string, opts ...ContextOption) Context {
	c := Context{
		TenantID:  tenantID,
		RequestID: types.NewID("req"),
		TraceID:   types.NewID("trc"),
		StartedAt: types.NowMS(),
		Locale:    "en",
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// CallOption customizes a derived service call
type CallOption func(*types.Call)

// WithTimeout sets the per-attempt wall-clock deadline
func WithTimeout(timeout time.Duration) CallOption {
	return func(c *types.Call) { c.Timeout = timeout }
}

// WithMaxAttempts sets the retry budget
func WithMaxAttempts(n int) CallOption {
	return func(c *types.Call) { c.MaxAttempts = n }
}

// WithIdempotencyKey scopes the call under a coalescing key
func WithIdempotencyKey(key string) CallOption {
	return func(c *types.Call) { c.IdempotencyKey = key }
}

// ServiceCall derives a service call from the context. Defaults: 3s
// timeout, 2 attempts, no idempotency key.
func (c Context) ServiceCall(opts ...CallOption) types.Call {
	call := types.Call{
		TenantID:    c.TenantID,
		RequestID:   c.RequestID,
		TraceID:     c.TraceID,
		Timeout:     3 * time.Second,
		MaxAttempts: 2,
		Tags:        c.Tags,
	}
	for _, opt := range opts {
		opt(&call)
	}
	return call
}
