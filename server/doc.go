// Package server implements the language server application layer on top
// of the endpoint dispatcher.
//
// A Server routes JSON-RPC requests and notifications to registered
// handlers, manages the LSP lifecycle (initialize, shutdown, exit),
// tracks request cancellation, and publishes server-to-client
// notifications such as textDocument/publishDiagnostics and
// window/logMessage.
//
// Basic usage:
//
//	srv := server.New(server.Info{Name: "my-language-server", Version: "1.0.0"})
//
//	srv.Request("textDocument/hover", func(ctx context.Context, params json.RawMessage) (any, error) {
//	    return map[string]any{"contents": "docs"}, nil
//	})
//
//	srv.Notification("textDocument/didOpen", func(ctx context.Context, params json.RawMessage) error {
//	    return server.PublishDiagnostics(server.PublisherFromContext(ctx), server.PublishDiagnosticsParams{
//	        URI: "file:///a.go",
//	    })
//	})
package server
