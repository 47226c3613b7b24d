package testutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/felixgeelhaar/lsp-go/protocol"
	"github.com/felixgeelhaar/lsp-go/server"
	"github.com/felixgeelhaar/lsp-go/testutil"
)

func newServer() *server.Server {
	srv := server.New(server.Info{Name: "test-server", Version: "0.0.1"})
	srv.Request("textDocument/hover", func(ctx context.Context, params json.RawMessage) (any, error) {
		return map[string]any{"contents": "docs"}, nil
	})
	srv.Notification("textDocument/didOpen", func(ctx context.Context, params json.RawMessage) error {
		return server.PublishDiagnostics(server.PublisherFromContext(ctx), server.PublishDiagnosticsParams{
			URI: "file:///a.go",
		})
	})
	return srv
}

func TestTestClient(t *testing.T) {
	t.Run("call returns decoded response", func(t *testing.T) {
		tc := testutil.NewTestClient(t, newServer())

		resp := tc.Call("textDocument/hover", map[string]any{})
		if resp.Error != nil {
			t.Fatalf("unexpected error: %v", resp.Error)
		}
		result := resp.Result.(map[string]any)
		if result["contents"] != "docs" {
			t.Errorf("result = %v", result)
		}
	})

	t.Run("notify returns published messages", func(t *testing.T) {
		tc := testutil.NewTestClient(t, newServer())

		msgs := tc.Notify("textDocument/didOpen", map[string]any{})
		notifications := testutil.Notifications(t, msgs)
		if len(notifications) != 1 {
			t.Fatalf("expected 1 notification, got %d", len(notifications))
		}
		if notifications[0].Method != protocol.MethodPublishDiagnostics {
			t.Errorf("method = %q", notifications[0].Method)
		}
	})

	t.Run("uninitialized client exposes lifecycle gating", func(t *testing.T) {
		tc := testutil.NewUninitializedTestClient(t, newServer())

		resp := tc.Call("textDocument/hover", nil)
		if resp.Error == nil || resp.Error.Code != protocol.CodeServerNotInitialized {
			t.Fatalf("expected server-not-initialized, got %v", resp.Error)
		}
	})

	t.Run("send dispatches raw messages", func(t *testing.T) {
		tc := testutil.NewTestClient(t, newServer())

		replies := tc.Send([]byte(`{not json`))
		if len(replies) != 1 {
			t.Fatalf("expected 1 reply, got %d", len(replies))
		}
		var resp protocol.Response
		if err := json.Unmarshal(replies[0], &resp); err != nil {
			t.Fatalf("reply is not valid JSON: %v", err)
		}
		if resp.Error == nil || resp.Error.Code != protocol.CodeParseError {
			t.Errorf("expected parse error, got %v", resp.Error)
		}
	})
}

func TestSpyRemote(t *testing.T) {
	t.Run("records and resets", func(t *testing.T) {
		remote := &testutil.SpyRemote{}

		if err := remote.SendMessage([]byte("a")); err != nil {
			t.Fatalf("send: %v", err)
		}
		if got := remote.Sent(); len(got) != 1 || string(got[0]) != "a" {
			t.Errorf("sent = %q", got)
		}

		remote.Reset()
		if got := remote.Sent(); len(got) != 0 {
			t.Errorf("sent after reset = %q", got)
		}
	})

	t.Run("fails on demand", func(t *testing.T) {
		remote := &testutil.SpyRemote{}
		boom := errors.New("pipe closed")
		remote.FailWith(boom)

		if err := remote.SendMessage([]byte("a")); !errors.Is(err, boom) {
			t.Errorf("err = %v, want %v", err, boom)
		}

		remote.FailWith(nil)
		if err := remote.SendMessage([]byte("b")); err != nil {
			t.Errorf("unexpected error after reset: %v", err)
		}
	})
}

func TestFraming(t *testing.T) {
	t.Run("frame round trip", func(t *testing.T) {
		var stream bytes.Buffer
		stream.Write(testutil.Frame([]byte(`{"jsonrpc":"2.0","method":"exit"}`)))
		stream.Write(testutil.Frame([]byte(`{"a":1}`)))

		bodies := testutil.ReadFrames(t, &stream)
		if len(bodies) != 2 {
			t.Fatalf("expected 2 bodies, got %d", len(bodies))
		}
		if string(bodies[1]) != `{"a":1}` {
			t.Errorf("body = %q", bodies[1])
		}
	})
}
