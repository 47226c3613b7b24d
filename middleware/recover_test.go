package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/lsp-go/protocol"
)

func TestRecover(t *testing.T) {
	t.Run("passes through normal execution", func(t *testing.T) {
		handler := Recover()(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			return protocol.NewResponse(req.ID, "ok"), nil
		})

		resp, err := handler(context.Background(), &protocol.Request{
			ID:     json.RawMessage(`1`),
			Method: "textDocument/hover",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp == nil {
			t.Fatal("expected response")
		}
	})

	t.Run("converts string panic to internal error", func(t *testing.T) {
		handler := Recover()(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			panic("something broke")
		})

		_, err := handler(context.Background(), &protocol.Request{
			ID:     json.RawMessage(`1`),
			Method: "textDocument/hover",
		})
		if err == nil {
			t.Fatal("expected error from recovered panic")
		}

		var rpcErr *protocol.Error
		if !errors.As(err, &rpcErr) {
			t.Fatalf("expected *protocol.Error, got %T", err)
		}
		if rpcErr.Code != protocol.CodeInternalError {
			t.Errorf("code = %d, want %d", rpcErr.Code, protocol.CodeInternalError)
		}
		if !strings.Contains(rpcErr.Message, "something broke") {
			t.Errorf("message %q should contain the panic value", rpcErr.Message)
		}
		if !strings.Contains(rpcErr.Message, "textDocument/hover") {
			t.Errorf("message %q should name the panicking method", rpcErr.Message)
		}
	})

	t.Run("converts error panic to internal error", func(t *testing.T) {
		boom := errors.New("boom")
		handler := Recover()(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			panic(boom)
		})

		_, err := handler(context.Background(), &protocol.Request{Method: "shutdown"})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "boom") {
			t.Errorf("error %q should contain the panic value", err.Error())
		}
	})

	t.Run("custom handler receives panic value", func(t *testing.T) {
		var got any
		handler := RecoverWithHandler(func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error) {
			got = panicVal
			return protocol.NewResponse(req.ID, "recovered"), nil
		})(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			panic(42)
		})

		resp, err := handler(context.Background(), &protocol.Request{
			ID:     json.RawMessage(`1`),
			Method: "textDocument/hover",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp == nil {
			t.Fatal("expected response from custom handler")
		}
		if got != 42 {
			t.Errorf("panic value = %v, want 42", got)
		}
	})
}
