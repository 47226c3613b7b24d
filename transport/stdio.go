package transport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"sync"
)

// Stdio implements the LSP base-protocol framing over stdin/stdout.
// It is also the endpoint.Remote for the session: outgoing messages are
// written to stdout with a Content-Length frame.
type Stdio struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	mu sync.Mutex
}

// StdioOption configures a Stdio transport.
type StdioOption func(*Stdio)

// WithStdin sets a custom stdin reader.
func WithStdin(r io.Reader) StdioOption {
	return func(s *Stdio) {
		s.in = r
	}
}

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.out = w
	}
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.errOut = w
	}
}

// NewStdio creates a new stdio transport.
func NewStdio(opts ...StdioOption) *Stdio {
	s := &Stdio{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Addr returns the transport address.
func (s *Stdio) Addr() string {
	return "stdio"
}

// SendMessage writes one framed message to stdout. Writes from concurrent
// senders are serialized so frames never interleave.
func (s *Stdio) SendMessage(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteMessage(s.out, data)
}

// Serve reads framed messages from stdin and feeds them to the listener
// until EOF, read failure, or context cancellation. A listener error (a
// failed transmission) also ends the session.
func (s *Stdio) Serve(ctx context.Context, bind Binder) error {
	listener := bind(s)
	reader := bufio.NewReader(s.in)

	msgs := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		for {
			msg, err := ReadMessage(reader)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				close(msgs)
				return
			}
			select {
			case msgs <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case msg, ok := <-msgs:
			if !ok {
				// The reader goroutine closes msgs after a send on
				// readErr; take the error if one is pending.
				select {
				case err := <-readErr:
					return err
				default:
					return nil // EOF
				}
			}
			if err := listener.OnMessage(msg); err != nil {
				return err
			}
		}
	}
}
