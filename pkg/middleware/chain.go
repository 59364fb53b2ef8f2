package middleware

import (
	"context"

	"github.com/burrowhq/burrow/pkg/types"
)

// Op describes a service operation being executed. It is an inert
// descriptor: middlewares read it, never mutate it.
type Op struct {
	ServiceKey string
	OpName     string
	Call       types.Call
}

// Next advances the chain toward the terminal operation
type Next func(ctx context.Context) (types.Result, error)

// Middleware wraps an operation. A middleware must either call next exactly
// once and return its (possibly transformed) result, or synthesize a result
// without calling next. Calling next twice is undefined behavior.
type Middleware func(ctx context.Context, op Op, next Next) (types.Result, error)

// Chain composes middlewares around a terminal operation, onion-style:
// middlewares run in insertion order, each wrapping everything that follows.
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a chain from the given middlewares
func NewChain(mws ...Middleware) *Chain {
	return &Chain{middlewares: mws}
}

// Add appends a middleware to the chain
func (c *Chain) Add(mw Middleware) {
	c.middlewares = append(c.middlewares, mw)
}

// Run executes the chain around the terminal operation
func (c *Chain) Run(ctx context.Context, op Op, terminal Next) (types.Result, error) {
	var callAt func(ctx context.Context, i int) (types.Result, error)
	callAt = func(ctx context.Context, i int) (types.Result, error) {
		if i >= len(c.middlewares) {
			return terminal(ctx)
		}

		mw := c.middlewares[i]
		return mw(ctx, op, func(ctx context.Context) (types.Result, error) {
			return callAt(ctx, i+1)
		})
	}

	return callAt(ctx, 0)
}
