package server

import (
	"context"

	"github.com/felixgeelhaar/lsp-go/endpoint"
	"github.com/felixgeelhaar/lsp-go/protocol"
)

// Publisher sends server-to-client notifications.
type Publisher interface {
	// Notify sends one notification with the given method and params.
	Notify(method string, params any) error
}

// bufferPublisher records notifications in an endpoint buffer. Messages
// recorded during notification dispatch are transmitted after the
// response message of the triggering input.
type bufferPublisher struct {
	buf *endpoint.Buffer
}

func (p *bufferPublisher) Notify(method string, params any) error {
	n, err := protocol.NewNotification(method, params)
	if err != nil {
		return err
	}
	if err := p.buf.AppendJSON(n); err != nil {
		return err
	}
	p.buf.EndMessage()
	return nil
}

// remotePublisher sends notifications directly to a remote. It is used
// outside message dispatch, for example by progress reporters running on
// their own goroutines.
type remotePublisher struct {
	remote endpoint.Remote
}

// NewRemotePublisher creates a publisher that transmits each notification
// immediately via remote.
func NewRemotePublisher(remote endpoint.Remote) Publisher {
	return &remotePublisher{remote: remote}
}

func (p *remotePublisher) Notify(method string, params any) error {
	n, err := protocol.NewNotification(method, params)
	if err != nil {
		return err
	}
	var buf endpoint.Buffer
	if err := buf.AppendJSON(n); err != nil {
		return err
	}
	return p.remote.SendMessage(buf.Bytes())
}

// noopPublisher discards notifications. It backs PublisherFromContext when
// no publisher is bound, so handlers can publish unconditionally.
type noopPublisher struct{}

func (noopPublisher) Notify(string, any) error { return nil }

// publisherKey is the context key for the bound publisher.
type publisherKey struct{}

// ContextWithPublisher returns a context with the publisher attached.
func ContextWithPublisher(ctx context.Context, p Publisher) context.Context {
	return context.WithValue(ctx, publisherKey{}, p)
}

// PublisherFromContext returns the publisher bound to the context, or a
// no-op publisher if none.
func PublisherFromContext(ctx context.Context) Publisher {
	if p, ok := ctx.Value(publisherKey{}).(Publisher); ok {
		return p
	}
	return noopPublisher{}
}
