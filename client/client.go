// Package client provides a JSON-RPC client for language servers. It is
// primarily meant for integration tests and tooling that drives a server
// the way an editor would.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/lsp-go/protocol"
)

// Transport is the client side of a connection to a language server.
type Transport interface {
	// Send transmits a request and waits for the matching response.
	Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
	// Notify transmits a notification. No reply is expected.
	Notify(ctx context.Context, n *protocol.Notification) error
	// Notifications returns the stream of server-to-client notifications,
	// such as textDocument/publishDiagnostics.
	Notifications() <-chan *protocol.Notification
	// Close closes the connection.
	Close() error
}

// ServerInfo describes the connected server after initialization.
type ServerInfo struct {
	Name         string
	Version      string
	Capabilities map[string]any
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	timeout    time.Duration
	clientName string
	clientVer  string
	rootURI    string
}

// WithTimeout sets the default timeout for requests.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithClientInfo sets the client name and version sent during initialize.
func WithClientInfo(name, version string) Option {
	return func(o *clientOptions) {
		o.clientName = name
		o.clientVer = version
	}
}

// WithRootURI sets the workspace root sent during initialize.
func WithRootURI(uri string) Option {
	return func(o *clientOptions) {
		o.rootURI = uri
	}
}

// Client communicates with a language server over a Transport.
type Client struct {
	transport Transport
	opts      clientOptions

	mu         sync.RWMutex
	serverInfo *ServerInfo
	requestID  atomic.Int64
}

// New creates a client using the given transport.
func New(transport Transport, opts ...Option) *Client {
	options := clientOptions{
		timeout:    30 * time.Second,
		clientName: "lsp-go-client",
		clientVer:  "1.0.0",
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Client{
		transport: transport,
		opts:      options,
	}
}

// Initialize performs the initialize handshake with the server.
func (c *Client) Initialize(ctx context.Context) (*ServerInfo, error) {
	params := map[string]any{
		"processId": nil,
		"clientInfo": map[string]any{
			"name":    c.opts.clientName,
			"version": c.opts.clientVer,
		},
		"capabilities": map[string]any{},
	}
	if c.opts.rootURI != "" {
		params["rootUri"] = c.opts.rootURI
	}

	raw, err := c.Call(ctx, protocol.MethodInitialize, params)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}

	var result struct {
		Capabilities map[string]any `json:"capabilities"`
		ServerInfo   struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("initialize: decode result: %w", err)
	}

	info := &ServerInfo{
		Name:         result.ServerInfo.Name,
		Version:      result.ServerInfo.Version,
		Capabilities: result.Capabilities,
	}

	c.mu.Lock()
	c.serverInfo = info
	c.mu.Unlock()

	return info, nil
}

// ServerInfo returns the info captured during Initialize, or nil before
// the handshake.
func (c *Client) ServerInfo() *ServerInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverInfo
}

// Call sends a request and returns its raw result. A JSON-RPC error
// response is returned as a *protocol.Error.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.timeout)
		defer cancel()
	}

	id := c.requestID.Add(1)
	req := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      json.RawMessage(fmt.Sprintf("%d", id)),
		Method:  method,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		req.Params = data
	}

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	raw, err := json.Marshal(resp.Result)
	if err != nil {
		return nil, fmt.Errorf("re-encode result: %w", err)
	}
	return raw, nil
}

// Notify sends a notification to the server.
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	n, err := protocol.NewNotification(method, params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	return c.transport.Notify(ctx, n)
}

// Notifications returns the stream of server-to-client notifications.
func (c *Client) Notifications() <-chan *protocol.Notification {
	return c.transport.Notifications()
}

// Shutdown asks the server to prepare for exit.
func (c *Client) Shutdown(ctx context.Context) error {
	_, err := c.Call(ctx, protocol.MethodShutdown, nil)
	return err
}

// Exit tells the server to exit. Call Shutdown first for an orderly
// termination.
func (c *Client) Exit(ctx context.Context) error {
	return c.Notify(ctx, protocol.MethodExit, nil)
}

// CancelRequest asks the server to cancel the request with the given id.
func (c *Client) CancelRequest(ctx context.Context, id json.RawMessage) error {
	return c.Notify(ctx, protocol.MethodCancelRequest, map[string]any{"id": id})
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}
