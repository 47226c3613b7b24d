package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/lsp-go/protocol"
)

// Timeout returns middleware that bounds how long a request may run.
//
// When the deadline expires the handler's context is cancelled and the
// failure is reported as a RequestFailed error naming the method and the
// elapsed limit. Cancellation initiated by the client via $/cancelRequest
// arrives through the parent context and is passed through untouched, so
// it still surfaces as RequestCancelled rather than a timeout.
func Timeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			tctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			resp, err := next(tctx, req)
			if err == nil {
				return resp, nil
			}
			// Report a timeout only when this layer's deadline fired;
			// a cancelled parent keeps its own error.
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, protocol.NewRequestFailed(
					fmt.Sprintf("%s did not complete within %v", req.Method, d))
			}
			return resp, err
		}
	}
}
