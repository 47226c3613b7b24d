package transport

import (
	"context"

	"github.com/felixgeelhaar/lsp-go/endpoint"
)

// Listener receives the text of one complete JSON-RPC message at a time.
type Listener interface {
	OnMessage(raw []byte) error
}

// ListenerFunc is an adapter to allow ordinary functions as listeners.
type ListenerFunc func(raw []byte) error

// OnMessage calls f(raw).
func (f ListenerFunc) OnMessage(raw []byte) error {
	return f(raw)
}

// Binder creates the listener for one connection, bound to the remote that
// replies on that connection. The usual binder constructs an
// endpoint.Endpoint around the application handler:
//
//	bind := func(remote endpoint.Remote) transport.Listener {
//	    return endpoint.New(handler, remote)
//	}
type Binder func(remote endpoint.Remote) Listener

// Transport is the framing layer: it delimits complete messages within a
// connection's byte stream and feeds them, one at a time, to the listener
// bound to that connection.
type Transport interface {
	// Serve starts the transport, blocking until ctx is canceled or an
	// error occurs.
	Serve(ctx context.Context, bind Binder) error

	// Addr returns the transport's address description.
	Addr() string
}
