package server

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/lsp-go/endpoint"
	"github.com/felixgeelhaar/lsp-go/protocol"
)

// HandleRequest implements endpoint.Handler. It runs the request through
// the middleware chain and appends exactly one response to response.
func (s *Server) HandleRequest(raw []byte, req *protocol.Request, response *endpoint.Buffer) {
	ctx, done := s.cancellations.Track(s.baseCtx, string(req.ID))
	defer done()

	resp, err := s.dispatchFunc()(ctx, req)
	if err != nil {
		resp = protocol.NewErrorResponse(req.ID, toProtocolError(err))
	}
	if resp == nil {
		resp = protocol.NewErrorResponse(req.ID, protocol.NewInternalError("handler returned no response"))
	}

	if err := response.AppendJSON(resp); err != nil {
		// The result was not marshalable. The buffer is unchanged, so the
		// slot is still open for an error response.
		_ = response.AppendJSON(protocol.NewErrorResponse(req.ID,
			protocol.NewInternalError("encode response: "+err.Error())))
	}
}

// HandleNotification implements endpoint.Handler. Messages published by
// the handler are recorded in notifications, one boundary per message.
func (s *Server) HandleNotification(raw []byte, req *protocol.Request, notifications *endpoint.Buffer) {
	ctx := ContextWithPublisher(s.baseCtx, &bufferPublisher{buf: notifications})
	s.handleNotification(ctx, req)
}

// toProtocolError maps a handler error to the JSON-RPC error object sent
// to the client. *protocol.Error values pass through unchanged.
func toProtocolError(err error) *protocol.Error {
	var rpcErr *protocol.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	if errors.Is(err, context.Canceled) {
		return protocol.NewRequestCancelled(err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return protocol.NewRequestFailed(err.Error())
	}
	return protocol.NewInternalError(err.Error())
}
