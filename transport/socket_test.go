package transport_test

import (
	"bufio"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/felixgeelhaar/lsp-go/endpoint"
	"github.com/felixgeelhaar/lsp-go/transport"
)

// echoBinder replies to every message with a fixed response.
func echoBinder(response string) transport.Binder {
	return func(remote endpoint.Remote) transport.Listener {
		return transport.ListenerFunc(func(_ []byte) error {
			return remote.SendMessage([]byte(response))
		})
	}
}

// waitForListen polls until the transport reports its listen address.
func waitForListen(t *testing.T, s *transport.Socket) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if addr := s.ListenAddr(); addr != "" {
			return addr
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("transport did not start listening")
	return ""
}

func TestSocket_Addr(t *testing.T) {
	s := transport.NewSocket("127.0.0.1:9257")
	if s.Addr() != "127.0.0.1:9257" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9257", s.Addr())
	}
}

func TestSocket_Serve(t *testing.T) {
	t.Run("round trips a framed message", func(t *testing.T) {
		s := transport.NewSocket("127.0.0.1:0")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Serve(ctx, echoBinder(`{"jsonrpc":"2.0","id":1,"result":null}`))
		}()

		addr := waitForListen(t, s)
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			t.Fatalf("failed to dial: %v", err)
		}
		defer conn.Close()

		if err := transport.WriteMessage(conn, []byte(`{"jsonrpc":"2.0","id":1,"method":"m"}`)); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		got, err := transport.ReadMessage(bufio.NewReader(conn))
		if err != nil {
			t.Fatalf("failed to read response: %v", err)
		}
		if string(got) != `{"jsonrpc":"2.0","id":1,"result":null}` {
			t.Errorf("response = %s", got)
		}

		cancel()
		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve error = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Serve did not return after cancellation")
		}
	})

	t.Run("serves connections independently", func(t *testing.T) {
		s := transport.NewSocket("127.0.0.1:0")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = s.Serve(ctx, echoBinder(`{"ok":true}`)) }()
		addr := waitForListen(t, s)

		for i := 0; i < 2; i++ {
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				t.Fatalf("failed to dial: %v", err)
			}

			if err := transport.WriteMessage(conn, []byte(`{}`)); err != nil {
				t.Fatalf("failed to write: %v", err)
			}

			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			got, err := transport.ReadMessage(bufio.NewReader(conn))
			if err != nil {
				t.Fatalf("failed to read response: %v", err)
			}
			if string(got) != `{"ok":true}` {
				t.Errorf("response = %s", got)
			}
			_ = conn.Close()
		}
	})
}
