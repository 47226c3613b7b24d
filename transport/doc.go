// Package transport provides the framing layer for LSP endpoints.
//
// A transport turns a connection's byte stream into discrete complete
// JSON-RPC message texts and feeds them, one at a time, to a Listener.
// The listener for each connection is created by a Binder, which receives
// the endpoint.Remote that replies on that connection; dispatch logic
// lives in the endpoint package, not here.
//
// # Stdio Transport
//
// The stdio transport speaks the LSP base protocol (Content-Length header
// framing) over stdin/stdout, the way editors launch language servers:
//
//	t := transport.NewStdio()
//	err := t.Serve(ctx, func(remote endpoint.Remote) transport.Listener {
//	    return endpoint.New(handler, remote)
//	})
//
// # Socket Transport
//
// The socket transport speaks the same framing over TCP, for clients that
// connect with a --socket style option:
//
//	t := transport.NewSocket("127.0.0.1:9257")
//	err := t.Serve(ctx, bind)
//
// # WebSocket Transport
//
// The WebSocket transport carries one JSON-RPC message per WebSocket text
// message; no header framing is needed:
//
//	t := transport.NewWebSocket(":8080")
//	err := t.Serve(ctx, bind)
//
// # Framing helpers
//
// ReadMessage and WriteMessage implement the Content-Length frame codec
// shared by the stdio and socket transports.
package transport
