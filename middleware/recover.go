package middleware

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/lsp-go/protocol"
)

// PanicHandler turns a recovered panic value into the reply for the
// request that panicked.
type PanicHandler func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error)

// Recover returns middleware that confines a panicking handler to the
// request that caused it: the session stays up and the client receives an
// internal error naming the method.
func Recover() Middleware {
	return RecoverWithHandler(func(_ context.Context, req *protocol.Request, v any) (*protocol.Response, error) {
		return nil, protocol.NewInternalError(fmt.Sprintf("%s panicked: %v", req.Method, v))
	})
}

// RecoverWithHandler returns panic-recovery middleware with a custom
// handler, for servers that log or alert before answering.
func RecoverWithHandler(handler PanicHandler) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (resp *protocol.Response, err error) {
			defer func() {
				if v := recover(); v != nil {
					resp, err = handler(ctx, req, v)
				}
			}()
			return next(ctx, req)
		}
	}
}
