package server

import (
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/lsp-go/endpoint"
	"github.com/felixgeelhaar/lsp-go/protocol"
)

type fakeRemote struct {
	sent [][]byte
}

func (r *fakeRemote) SendMessage(data []byte) error {
	msg := make([]byte, len(data))
	copy(msg, data)
	r.sent = append(r.sent, msg)
	return nil
}

func TestBufferPublisher(t *testing.T) {
	t.Run("records one message per notify", func(t *testing.T) {
		var buf endpoint.Buffer
		pub := &bufferPublisher{buf: &buf}

		if err := pub.Notify("window/logMessage", LogMessageParams{Type: MessageInfo, Message: "a"}); err != nil {
			t.Fatalf("notify: %v", err)
		}
		if err := pub.Notify("window/logMessage", LogMessageParams{Type: MessageInfo, Message: "b"}); err != nil {
			t.Fatalf("notify: %v", err)
		}

		msgs := buf.Messages()
		if len(msgs) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(msgs))
		}
		for i, msg := range msgs {
			var n protocol.Notification
			if err := json.Unmarshal(msg, &n); err != nil {
				t.Errorf("message %d is not a complete JSON value: %v", i, err)
			}
		}
	})

	t.Run("rejects unmarshalable params", func(t *testing.T) {
		var buf endpoint.Buffer
		pub := &bufferPublisher{buf: &buf}

		if err := pub.Notify("window/logMessage", make(chan int)); err == nil {
			t.Fatal("expected marshal error")
		}
		if buf.Len() != 0 {
			t.Errorf("buffer should be unchanged, has %d bytes", buf.Len())
		}
	})
}

func TestRemotePublisher(t *testing.T) {
	t.Run("sends immediately", func(t *testing.T) {
		remote := &fakeRemote{}
		pub := NewRemotePublisher(remote)

		if err := pub.Notify(protocol.MethodProgress, progressParams{
			Token: "tok-1",
			Value: WorkDoneProgress{Kind: "begin", Title: "indexing"},
		}); err != nil {
			t.Fatalf("notify: %v", err)
		}

		if len(remote.sent) != 1 {
			t.Fatalf("expected 1 sent message, got %d", len(remote.sent))
		}
		var n protocol.Notification
		if err := json.Unmarshal(remote.sent[0], &n); err != nil {
			t.Fatalf("sent message is not valid JSON: %v", err)
		}
		if n.Method != protocol.MethodProgress {
			t.Errorf("method = %q, want %q", n.Method, protocol.MethodProgress)
		}
	})
}
