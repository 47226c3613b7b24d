// Package testutil provides testing utilities for language servers.
//
// It offers an in-memory test client that drives a server through the
// JSON-RPC dispatcher without any transport, a spy remote for asserting
// on outgoing messages, and Content-Length framing helpers for
// transport-level tests.
//
// Example usage:
//
//	func TestMyServer(t *testing.T) {
//	    srv := server.New(server.Info{Name: "test", Version: "1.0.0"})
//	    srv.Request("textDocument/hover", hoverHandler)
//
//	    tc := testutil.NewTestClient(t, srv)
//	    resp := tc.Call("textDocument/hover", map[string]any{"position": pos})
//	    if resp.Error != nil {
//	        t.Fatalf("hover failed: %v", resp.Error)
//	    }
//	}
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"
	"testing"

	"github.com/felixgeelhaar/lsp-go/endpoint"
	"github.com/felixgeelhaar/lsp-go/protocol"
	"github.com/felixgeelhaar/lsp-go/server"
)

// SpyRemote records every message sent through it.
// It is safe for concurrent use.
type SpyRemote struct {
	mu   sync.Mutex
	sent [][]byte
	err  error
}

// SendMessage implements endpoint.Remote.
func (r *SpyRemote) SendMessage(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	msg := make([]byte, len(data))
	copy(msg, data)
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns copies of all recorded messages in send order.
func (r *SpyRemote) Sent() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.sent))
	copy(out, r.sent)
	return out
}

// Reset discards all recorded messages.
func (r *SpyRemote) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

// FailWith makes every subsequent send return err. Pass nil to restore
// normal operation.
func (r *SpyRemote) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// TestClient drives a language server through an in-memory endpoint.
type TestClient struct {
	t        testing.TB
	endpoint *endpoint.Endpoint
	remote   *SpyRemote
	reqID    int64
}

// NewTestClient creates a test client for srv and performs the initialize
// handshake.
func NewTestClient(t testing.TB, srv *server.Server) *TestClient {
	t.Helper()

	tc := NewUninitializedTestClient(t, srv)
	resp := tc.Call(protocol.MethodInitialize, map[string]any{"processId": nil})
	if resp.Error != nil {
		t.Fatalf("initialize failed: %v", resp.Error)
	}
	return tc
}

// NewUninitializedTestClient creates a test client without performing the
// initialize handshake. Use it to test lifecycle gating.
func NewUninitializedTestClient(t testing.TB, srv *server.Server) *TestClient {
	t.Helper()

	remote := &SpyRemote{}
	return &TestClient{
		t:        t,
		endpoint: endpoint.New(srv, remote),
		remote:   remote,
	}
}

// Remote returns the spy remote recording the server's outgoing messages.
func (tc *TestClient) Remote() *SpyRemote {
	return tc.remote
}

// Send dispatches one raw JSON-RPC message and returns the messages the
// server sent in reply, in order.
func (tc *TestClient) Send(raw []byte) [][]byte {
	tc.t.Helper()

	before := len(tc.remote.Sent())
	if err := tc.endpoint.OnMessage(raw); err != nil {
		tc.t.Fatalf("dispatch failed: %v", err)
	}
	return tc.remote.Sent()[before:]
}

// Call sends a request with a fresh id and returns the decoded response.
// Notifications published while handling the request are recorded in the
// spy remote after the response.
func (tc *TestClient) Call(method string, params any) *protocol.Response {
	tc.t.Helper()

	tc.reqID++
	req := map[string]any{
		"jsonrpc": protocol.JSONRPCVersion,
		"id":      tc.reqID,
		"method":  method,
	}
	if params != nil {
		req["params"] = params
	}
	raw, err := json.Marshal(req)
	if err != nil {
		tc.t.Fatalf("marshal request: %v", err)
	}

	replies := tc.Send(raw)
	if len(replies) == 0 {
		tc.t.Fatalf("no response for %s request", method)
	}

	var resp protocol.Response
	if err := json.Unmarshal(replies[0], &resp); err != nil {
		tc.t.Fatalf("response is not valid JSON: %v\n%s", err, replies[0])
	}
	if string(resp.ID) != strconv.FormatInt(tc.reqID, 10) {
		tc.t.Fatalf("response id = %s, want %d", resp.ID, tc.reqID)
	}
	return &resp
}

// Notify sends a notification and returns the messages the server
// published while handling it.
func (tc *TestClient) Notify(method string, params any) [][]byte {
	tc.t.Helper()

	req := map[string]any{
		"jsonrpc": protocol.JSONRPCVersion,
		"method":  method,
	}
	if params != nil {
		req["params"] = params
	}
	raw, err := json.Marshal(req)
	if err != nil {
		tc.t.Fatalf("marshal notification: %v", err)
	}
	return tc.Send(raw)
}

// Notifications decodes the given messages as notifications.
func Notifications(t testing.TB, msgs [][]byte) []*protocol.Notification {
	t.Helper()

	out := make([]*protocol.Notification, 0, len(msgs))
	for i, msg := range msgs {
		var n protocol.Notification
		if err := json.Unmarshal(msg, &n); err != nil {
			t.Fatalf("message %d is not a valid notification: %v\n%s", i, err, msg)
		}
		out = append(out, &n)
	}
	return out
}

// Frame wraps body in a Content-Length header for transport-level tests.
func Frame(body []byte) []byte {
	return append(fmt.Appendf(nil, "Content-Length: %d\r\n\r\n", len(body)), body...)
}

// ReadFrames reads framed message bodies from r until EOF. Each body is
// preceded by a Content-Length header.
func ReadFrames(t testing.TB, r io.Reader) [][]byte {
	t.Helper()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read frames: %v", err)
	}

	var bodies [][]byte
	for len(data) > 0 {
		header, rest, ok := bytes.Cut(data, []byte("\r\n\r\n"))
		if !ok {
			t.Fatalf("incomplete frame header: %q", data)
		}
		var length int
		for _, line := range bytes.Split(header, []byte("\r\n")) {
			name, value, ok := bytes.Cut(line, []byte(":"))
			if ok && bytes.EqualFold(bytes.TrimSpace(name), []byte("Content-Length")) {
				length, err = strconv.Atoi(string(bytes.TrimSpace(value)))
				if err != nil {
					t.Fatalf("bad Content-Length: %v", err)
				}
			}
		}
		if length == 0 || length > len(rest) {
			t.Fatalf("frame length %d exceeds remaining %d bytes", length, len(rest))
		}
		bodies = append(bodies, rest[:length])
		data = rest[length:]
	}
	return bodies
}

// HandlerFuncs adapts plain functions to endpoint.Handler. Nil fields get
// safe defaults: requests are answered with method-not-found and
// notifications are dropped.
type HandlerFuncs struct {
	OnRequest      func(raw []byte, req *protocol.Request, response *endpoint.Buffer)
	OnNotification func(raw []byte, req *protocol.Request, notifications *endpoint.Buffer)
}

// HandleRequest implements endpoint.Handler.
func (h HandlerFuncs) HandleRequest(raw []byte, req *protocol.Request, response *endpoint.Buffer) {
	if h.OnRequest == nil {
		_ = response.AppendJSON(protocol.NewErrorResponse(req.ID, protocol.NewMethodNotFound(req.Method)))
		return
	}
	h.OnRequest(raw, req, response)
}

// HandleNotification implements endpoint.Handler.
func (h HandlerFuncs) HandleNotification(raw []byte, req *protocol.Request, notifications *endpoint.Buffer) {
	if h.OnNotification == nil {
		return
	}
	h.OnNotification(raw, req, notifications)
}
