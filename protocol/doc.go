// Package protocol defines the JSON-RPC 2.0 message types and error codes
// used by the Language Server Protocol.
//
// This package provides the low-level wire structures used by lsp-go.
// Most users should use the higher-level lsp package instead.
//
// # Request and Response Types
//
// The package defines the core JSON-RPC 2.0 message types:
//
//	type Request struct {
//	    JSONRPC string          `json:"jsonrpc"`
//	    ID      json.RawMessage `json:"id,omitempty"`
//	    Method  string          `json:"method"`
//	    Params  json.RawMessage `json:"params,omitempty"`
//	}
//
//	type Response struct {
//	    JSONRPC string          `json:"jsonrpc"`
//	    ID      json.RawMessage `json:"id"`
//	    Result  any             `json:"result,omitempty"`
//	    Error   *Error          `json:"error,omitempty"`
//	}
//
// A Request with no id member is a notification. The id is held as raw
// JSON so that number, string, and null identifiers round-trip unchanged.
//
// # Error Codes
//
// Standard JSON-RPC 2.0 error codes are defined as constants:
//
//	CodeParseError     = -32700  // Invalid JSON
//	CodeInvalidRequest = -32600  // Invalid Request object
//	CodeMethodNotFound = -32601  // Method not found
//	CodeInvalidParams  = -32602  // Invalid method parameters
//	CodeInternalError  = -32603  // Internal server error
//
// along with the LSP-reserved codes such as CodeServerNotInitialized and
// CodeRequestCancelled. Helper functions create properly formatted errors:
//
//	err := protocol.NewMethodNotFound("unknown/method")
//	err := protocol.NewInvalidParams("missing required field: uri")
//
// # LSP Method Constants
//
// Method names used by the lifecycle and text-document handlers are
// defined as constants:
//
//	MethodInitialize = "initialize"
//	MethodShutdown   = "shutdown"
//	MethodDidOpen    = "textDocument/didOpen"
package protocol
