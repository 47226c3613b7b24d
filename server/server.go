package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/felixgeelhaar/lsp-go/middleware"
	"github.com/felixgeelhaar/lsp-go/protocol"
)

// Info contains server metadata reported to the client during initialize.
type Info struct {
	Name    string
	Version string
}

// RequestHandler processes one request and returns the result to encode
// into the response. Returning a *protocol.Error sends it to the client
// unchanged; any other error is reported as an internal error.
type RequestHandler func(ctx context.Context, params json.RawMessage) (any, error)

// NotificationHandler processes one incoming notification. Notifications
// have no reply channel; a returned error is logged and dropped.
type NotificationHandler func(ctx context.Context, params json.RawMessage) error

// Option configures a Server.
type Option func(*Server)

// WithCapabilities sets the capabilities reported in the initialize result.
func WithCapabilities(capabilities map[string]any) Option {
	return func(s *Server) {
		s.capabilities = capabilities
	}
}

// WithLogger sets the logger for server-side events such as failed
// notification handlers.
func WithLogger(logger middleware.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithBaseContext sets the parent context for per-request contexts.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) {
		s.baseCtx = ctx
	}
}

// WithOnExit sets a callback invoked when the client sends the exit
// notification. The code is 0 after an orderly shutdown and 1 otherwise.
func WithOnExit(fn func(code int)) Option {
	return func(s *Server) {
		s.onExit = fn
	}
}

// Lifecycle states.
const (
	stateUninitialized = iota
	stateInitialized
	stateShutdown
)

// Server is a language server instance. It implements endpoint.Handler
// and is safe for registration from multiple goroutines, though message
// dispatch itself is single-threaded per endpoint.
type Server struct {
	mu sync.RWMutex

	info          Info
	capabilities  map[string]any
	requests      map[string]RequestHandler
	notifications map[string]NotificationHandler
	middleware    []middleware.Middleware
	handleFunc    middleware.HandlerFunc

	cancellations *CancellationManager
	logger        middleware.Logger
	baseCtx       context.Context
	onExit        func(code int)

	state  int
	exited bool
}

// New creates a language server with the given info and options.
func New(info Info, opts ...Option) *Server {
	s := &Server{
		info:          info,
		capabilities:  make(map[string]any),
		requests:      make(map[string]RequestHandler),
		notifications: make(map[string]NotificationHandler),
		cancellations: NewCancellationManager(),
		logger:        middleware.NopLogger{},
		baseCtx:       context.Background(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.rebuildChain()
	return s
}

// Info returns the server info.
func (s *Server) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Capabilities returns the capabilities reported during initialize.
func (s *Server) Capabilities() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capabilities
}

// Use registers middleware executed around every request dispatch.
func (s *Server) Use(middleware ...middleware.Middleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middleware = append(s.middleware, middleware...)
	s.rebuildChain()
}

// Request registers a handler for the given request method.
// Registering the name of a built-in lifecycle method overrides it.
func (s *Server) Request(method string, handler RequestHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[method] = handler
}

// Notification registers a handler for the given notification method.
func (s *Server) Notification(method string, handler NotificationHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[method] = handler
}

// Cancellations returns the server's cancellation manager.
func (s *Server) Cancellations() *CancellationManager {
	return s.cancellations
}

// Initialized reports whether the initialize handshake has completed.
func (s *Server) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state >= stateInitialized
}

// ShuttingDown reports whether a shutdown request has been received.
func (s *Server) ShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == stateShutdown
}

// Exited reports whether the client has sent the exit notification.
func (s *Server) Exited() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exited
}

// rebuildChain recomposes the middleware chain. Callers must hold mu,
// except from New where the server is not yet shared.
func (s *Server) rebuildChain() {
	s.handleFunc = middleware.Chain(s.middleware...)(s.handleRequest)
}

func (s *Server) getRequestHandler(method string) (RequestHandler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.requests[method]
	return h, ok
}

func (s *Server) getNotificationHandler(method string) (NotificationHandler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.notifications[method]
	return h, ok
}

func (s *Server) dispatchFunc() middleware.HandlerFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handleFunc
}

// handleRequest is the innermost request handler, below the middleware
// chain. Lifecycle methods are handled here; everything else goes through
// the registry.
func (s *Server) handleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	switch req.Method {
	case protocol.MethodInitialize:
		return s.handleInitialize(req)
	case protocol.MethodShutdown:
		return s.handleShutdown(req)
	}

	if !s.Initialized() {
		return nil, protocol.NewServerNotInitialized("server has not been initialized")
	}
	if s.ShuttingDown() {
		return nil, protocol.NewInvalidRequest("server is shutting down")
	}

	handler, ok := s.getRequestHandler(req.Method)
	if !ok {
		return nil, protocol.NewMethodNotFound(req.Method)
	}

	// Handlers registered under several methods read the invoking method
	// from the request metadata.
	ctx = protocol.SetRequestMeta(ctx, "method", req.Method)

	result, err := handler(ctx, req.Params)
	if err != nil {
		return nil, err
	}
	return protocol.NewResponse(req.ID, result), nil
}

// handleNotification routes one incoming notification. Per the lifecycle
// rules, exit and $/cancelRequest are honored in every state; all other
// notifications are dropped until initialize completes.
func (s *Server) handleNotification(ctx context.Context, req *protocol.Request) {
	switch req.Method {
	case protocol.MethodExit:
		s.handleExit()
		return
	case protocol.MethodCancelRequest:
		s.handleCancelRequest(req.Params)
		return
	}

	if !s.Initialized() {
		s.logger.Debug("dropping notification before initialize",
			middleware.F("method", req.Method),
		)
		return
	}

	handler, ok := s.getNotificationHandler(req.Method)
	if !ok {
		// Unknown notifications are dropped, per JSON-RPC 2.0.
		return
	}

	ctx = protocol.SetRequestMeta(ctx, "method", req.Method)
	if err := handler(ctx, req.Params); err != nil {
		s.logger.Error("notification handler failed",
			middleware.F("method", req.Method),
			middleware.F("error", err.Error()),
		)
	}
}
