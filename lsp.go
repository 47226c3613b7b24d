// Package lsp provides a framework for building language servers speaking
// JSON-RPC 2.0 over LSP's Content-Length framed transports.
//
// The package wires three layers together:
//   - endpoint: the JSON-RPC dispatcher (parsing, batching, reply assembly)
//   - server: method routing, lifecycle, cancellation, and publishing
//   - transport: stdio, TCP socket, and WebSocket framing
//
// Basic usage:
//
//	srv := lsp.NewServer(lsp.ServerInfo{
//	    Name:    "my-language-server",
//	    Version: "1.0.0",
//	}, lsp.WithCapabilities(map[string]any{
//	    "textDocumentSync": 1,
//	    "hoverProvider":    true,
//	}))
//
//	srv.Request("textDocument/hover", func(ctx context.Context, params json.RawMessage) (any, error) {
//	    return map[string]any{"contents": "docs"}, nil
//	})
//
//	lsp.ServeStdio(ctx, srv)
package lsp

import (
	"context"
	"time"

	"github.com/felixgeelhaar/lsp-go/endpoint"
	"github.com/felixgeelhaar/lsp-go/middleware"
	"github.com/felixgeelhaar/lsp-go/protocol"
	"github.com/felixgeelhaar/lsp-go/server"
	"github.com/felixgeelhaar/lsp-go/transport"
)

// Re-export core types for convenience

// ServerInfo contains server metadata reported to the client.
type ServerInfo = server.Info

// Server is the language server instance.
type Server = server.Server

// Option configures a Server.
type Option = server.Option

// Handler registration types
type RequestHandler = server.RequestHandler
type NotificationHandler = server.NotificationHandler

// Wire types
type Request = protocol.Request
type Response = protocol.Response
type Notification = protocol.Notification
type Error = protocol.Error

// Diagnostics types
type Position = server.Position
type Range = server.Range
type Diagnostic = server.Diagnostic
type DiagnosticSeverity = server.DiagnosticSeverity
type PublishDiagnosticsParams = server.PublishDiagnosticsParams

// Diagnostic severities.
const (
	SeverityError       = server.SeverityError
	SeverityWarning     = server.SeverityWarning
	SeverityInformation = server.SeverityInformation
	SeverityHint        = server.SeverityHint
)

// Publishing types
type Publisher = server.Publisher
type ClientLogger = server.ClientLogger
type MessageType = server.MessageType

// Log message severities for window/logMessage.
const (
	MessageError   = server.MessageError
	MessageWarning = server.MessageWarning
	MessageInfo    = server.MessageInfo
	MessageLog     = server.MessageLog
)

// NewClientLogger creates a client logger publishing window/logMessage
// notifications.
var NewClientLogger = server.NewClientLogger

// Progress types for long-running requests
type ProgressToken = server.ProgressToken
type ProgressReporter = server.ProgressReporter

// PublisherFromContext returns the publisher bound to a notification
// handler's context. Use it to send publishDiagnostics and friends.
var PublisherFromContext = server.PublisherFromContext

// PublishDiagnostics sends a textDocument/publishDiagnostics notification.
var PublishDiagnostics = server.PublishDiagnostics

// ProgressFromContext returns the progress reporter from context.
var ProgressFromContext = server.ProgressFromContext

// NewProgressReporter creates a reporter sending $/progress notifications.
var NewProgressReporter = server.NewProgressReporter

// ExtractProgressToken extracts the workDoneToken from request params.
var ExtractProgressToken = server.ExtractProgressToken

// Server options.
var (
	WithCapabilities = server.WithCapabilities
	WithOnExit       = server.WithOnExit
	WithBaseContext  = server.WithBaseContext
)

// Middleware types
type Middleware = middleware.Middleware
type MiddlewareHandlerFunc = middleware.HandlerFunc
type Logger = middleware.Logger
type LogField = middleware.Field
type RateLimitOption = middleware.RateLimitOption

// RateLimit re-exports for convenience.
var (
	RateLimit            = middleware.RateLimit
	RateLimitByMethod    = middleware.RateLimitByMethod
	RateLimitByClient    = middleware.RateLimitByClient
	WithRateLimitKeyFunc = middleware.WithRateLimitKeyFunc
	WithRateLimitLogger  = middleware.WithRateLimitLogger
)

// SizeLimit re-exports for convenience.
type SizeLimitOption = middleware.SizeLimitOption

var (
	SizeLimit           = middleware.SizeLimit
	WithSizeLimitLogger = middleware.WithSizeLimitLogger
)

// Size limit presets.
const (
	KB = middleware.KB
	MB = middleware.MB
)

// ServeOption configures how the server is run.
type ServeOption func(*serveOptions)

type serveOptions struct {
	middleware []Middleware
	logger     Logger
}

// WithMiddleware adds middleware to the request handling chain.
func WithMiddleware(m ...Middleware) ServeOption {
	return func(o *serveOptions) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithLogger installs the default middleware stack around the given
// logger.
func WithLogger(l Logger) ServeOption {
	return func(o *serveOptions) {
		o.logger = l
	}
}

// NewServer creates a language server with the given info and options.
func NewServer(info ServerInfo, opts ...Option) *Server {
	return server.New(info, opts...)
}

// NewEndpoint creates a JSON-RPC endpoint dispatching to handler and
// replying via remote. Most callers use the Serve functions instead; use
// this to embed the dispatcher in a custom transport.
func NewEndpoint(handler endpoint.Handler, remote endpoint.Remote) *endpoint.Endpoint {
	return endpoint.New(handler, remote)
}

// newBinder applies serve options to srv and returns the transport binder
// that connects each remote to a fresh endpoint.
func newBinder(srv *Server, opts ...ServeOption) transport.Binder {
	options := &serveOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.logger != nil {
		srv.Use(middleware.DefaultStack(options.logger)...)
	}
	if len(options.middleware) > 0 {
		srv.Use(options.middleware...)
	}

	return func(remote endpoint.Remote) transport.Listener {
		return endpoint.New(srv, remote)
	}
}

// ServeStdio runs the server over stdin and stdout, the transport editors
// use for locally spawned language servers. This blocks until the context
// is canceled or stdin reaches EOF.
func ServeStdio(ctx context.Context, srv *Server, opts ...ServeOption) error {
	t := transport.NewStdio()
	return t.Serve(ctx, newBinder(srv, opts...))
}

// ServeSocket runs the server on a TCP listener.
// This blocks until the context is canceled or an error occurs.
func ServeSocket(ctx context.Context, srv *Server, addr string, opts ...ServeOption) error {
	t := transport.NewSocket(addr)
	return t.Serve(ctx, newBinder(srv, opts...))
}

// WebSocketOption configures the WebSocket transport.
type WebSocketOption = transport.WebSocketOption

// ServeWebSocket runs the server on a WebSocket listener.
// This blocks until the context is canceled or an error occurs.
func ServeWebSocket(ctx context.Context, srv *Server, addr string, wsOpts []WebSocketOption, opts ...ServeOption) error {
	t := transport.NewWebSocket(addr, wsOpts...)
	return t.Serve(ctx, newBinder(srv, opts...))
}

// WithWebSocketReadTimeout sets the read timeout for WebSocket messages.
func WithWebSocketReadTimeout(d time.Duration) WebSocketOption {
	return transport.WithWebSocketReadTimeout(d)
}

// WithWebSocketWriteTimeout sets the write timeout for WebSocket messages.
func WithWebSocketWriteTimeout(d time.Duration) WebSocketOption {
	return transport.WithWebSocketWriteTimeout(d)
}

// Middleware re-exports

// Chain composes multiple middleware into a single middleware.
func Chain(middlewares ...Middleware) Middleware {
	return middleware.Chain(middlewares...)
}

// Recover returns middleware that catches panics and converts them to internal errors.
func Recover() Middleware {
	return middleware.Recover()
}

// RecoverWithHandler returns middleware that catches panics and calls the provided handler.
func RecoverWithHandler(handler func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error)) Middleware {
	return middleware.RecoverWithHandler(handler)
}

// Timeout returns middleware that enforces a request deadline.
func Timeout(d time.Duration) Middleware {
	return middleware.Timeout(d)
}

// RequestID returns middleware that injects a unique request ID into the context.
func RequestID() Middleware {
	return middleware.RequestID()
}

// RequestIDFromContext returns the request ID from the context, or empty string if not set.
func RequestIDFromContext(ctx context.Context) string {
	return middleware.RequestIDFromContext(ctx)
}

// Logging returns middleware that logs request details.
func Logging(logger Logger) Middleware {
	return middleware.Logging(logger)
}

// DefaultMiddleware returns the recommended production middleware stack.
func DefaultMiddleware(logger Logger) []Middleware {
	return middleware.DefaultStack(logger)
}

// DefaultMiddlewareWithTimeout returns the default stack with a timeout middleware.
func DefaultMiddlewareWithTimeout(logger Logger, timeout time.Duration) []Middleware {
	return middleware.DefaultStackWithTimeout(logger, timeout)
}

// LogF creates a new log field with the given key and value.
func LogF(key string, value any) LogField {
	return middleware.F(key, value)
}
