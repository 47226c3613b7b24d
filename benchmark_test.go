// Package lsp benchmarks for key dispatch paths.
package lsp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/lsp-go"
	"github.com/felixgeelhaar/lsp-go/endpoint"
)

type discardRemote struct{}

func (discardRemote) SendMessage([]byte) error { return nil }

func newBenchServer(b *testing.B) *lsp.Server {
	b.Helper()

	srv := lsp.NewServer(lsp.ServerInfo{Name: "bench", Version: "0.0.0"})
	srv.Request("textDocument/hover", func(ctx context.Context, params json.RawMessage) (any, error) {
		return map[string]any{"contents": "docs"}, nil
	})
	srv.Notification("textDocument/didChange", func(ctx context.Context, params json.RawMessage) error {
		return nil
	})

	ep := endpoint.New(srv, discardRemote{})
	if err := ep.OnMessage([]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)); err != nil {
		b.Fatal(err)
	}
	return srv
}

// BenchmarkRequestDispatch measures a single request round trip through
// the endpoint.
func BenchmarkRequestDispatch(b *testing.B) {
	srv := newBenchServer(b)
	ep := endpoint.New(srv, discardRemote{})
	msg := []byte(`{"jsonrpc":"2.0","id":2,"method":"textDocument/hover","params":{"position":{"line":1,"character":2}}}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ep.OnMessage(msg); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkNotificationDispatch measures notification handling, the hot
// path for textDocument/didChange traffic.
func BenchmarkNotificationDispatch(b *testing.B) {
	srv := newBenchServer(b)
	ep := endpoint.New(srv, discardRemote{})
	msg := []byte(`{"jsonrpc":"2.0","method":"textDocument/didChange","params":{"contentChanges":[{"text":"package a"}]}}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ep.OnMessage(msg); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkBatchDispatch measures fan-out over a batch of requests.
func BenchmarkBatchDispatch(b *testing.B) {
	srv := newBenchServer(b)
	ep := endpoint.New(srv, discardRemote{})

	units := make([]string, 10)
	for i := range units {
		units[i] = fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"textDocument/hover","params":{}}`, i+2)
	}
	msg := []byte("[" + units[0])
	for _, u := range units[1:] {
		msg = append(msg, ',')
		msg = append(msg, u...)
	}
	msg = append(msg, ']')

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ep.OnMessage(msg); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParseErrorPath measures the cost of rejecting unparsable text.
func BenchmarkParseErrorPath(b *testing.B) {
	ep := endpoint.New(newBenchServer(b), discardRemote{})
	msg := []byte(`{"jsonrpc": "2.0", "method":`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ep.OnMessage(msg); err != nil {
			b.Fatal(err)
		}
	}
}
