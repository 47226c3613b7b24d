// Package middleware provides request middleware for LSP request handling.
package middleware

import (
	"context"

	"github.com/felixgeelhaar/lsp-go/protocol"
)

// HandlerFunc is the dispatch signature middleware wraps: one decoded
// request in, one response or error out. The server's request dispatch
// and every middleware layer share this shape, so a chain can be applied
// at any depth.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// Middleware wraps a handler with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares into one. The first argument becomes the
// outermost layer: Chain(a, b)(h) enters a, then b, then h, and unwinds
// in the reverse order. An empty chain returns the handler unchanged.
func Chain(middlewares ...Middleware) Middleware {
	return func(final HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// MiddlewareChain accumulates middleware for servers that assemble their
// stack in stages, e.g. a base stack plus per-deployment additions.
type MiddlewareChain struct {
	middlewares []Middleware
}

// Use starts a chain with the given middleware.
func Use(middlewares ...Middleware) *MiddlewareChain {
	return &MiddlewareChain{middlewares: middlewares}
}

// Append adds middleware after the existing layers and returns the chain.
func (c *MiddlewareChain) Append(middlewares ...Middleware) *MiddlewareChain {
	c.middlewares = append(c.middlewares, middlewares...)
	return c
}

// Then wraps handler in the accumulated layers.
func (c *MiddlewareChain) Then(handler HandlerFunc) HandlerFunc {
	return Chain(c.middlewares...)(handler)
}
