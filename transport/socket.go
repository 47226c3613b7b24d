package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Socket implements the LSP base-protocol framing over a TCP listener,
// for clients launched with a --socket style option. Each accepted
// connection gets its own listener bound to a per-connection remote.
type Socket struct {
	addr string

	mu         sync.RWMutex
	listenAddr string
	conns      map[net.Conn]struct{}
}

// NewSocket creates a TCP socket transport listening on addr.
func NewSocket(addr string) *Socket {
	return &Socket{
		addr:  addr,
		conns: make(map[net.Conn]struct{}),
	}
}

// Addr returns the configured address.
func (s *Socket) Addr() string {
	return s.addr
}

// ListenAddr returns the actual address the transport is listening on.
func (s *Socket) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listenAddr
}

// Serve accepts connections and feeds each connection's framed messages to
// a listener bound for that connection. It blocks until ctx is canceled or
// the listener socket fails.
func (s *Socket) Serve(ctx context.Context, bind Binder) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.mu.Lock()
	s.listenAddr = ln.Addr().String()
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
					errCh <- err
				}
				return
			}
			go s.handleConn(conn, bind)
		}
	}()

	select {
	case <-ctx.Done():
		_ = ln.Close()
		s.closeAllConns()
		return ctx.Err()
	case err := <-errCh:
		_ = ln.Close()
		return err
	}
}

func (s *Socket) handleConn(conn net.Conn, bind Binder) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	remote := &connRemote{conn: conn}
	listener := bind(remote)

	reader := bufio.NewReader(conn)
	for {
		msg, err := ReadMessage(reader)
		if err != nil {
			// EOF and framing errors both end this connection only.
			return
		}
		if err := listener.OnMessage(msg); err != nil {
			return
		}
	}
}

func (s *Socket) closeAllConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}

// connRemote replies on one TCP connection, serializing framed writes.
type connRemote struct {
	conn net.Conn
	mu   sync.Mutex
}

func (r *connRemote) SendMessage(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return WriteMessage(r.conn, data)
}
