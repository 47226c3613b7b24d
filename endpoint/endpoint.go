package endpoint

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/lsp-go/protocol"
)

// Handler processes decoded JSON-RPC units.
//
// HandleRequest must append exactly one well-formed JSON-RPC response
// object (result or error) for the given request to response, and nothing
// else. HandleNotification may append any number of complete outgoing
// JSON-RPC messages to notifications, marking each boundary with
// EndMessage; the endpoint transmits each recorded message separately.
type Handler interface {
	HandleRequest(raw []byte, req *protocol.Request, response *Buffer)
	HandleNotification(raw []byte, req *protocol.Request, notifications *Buffer)
}

// Remote transmits one complete JSON-RPC message to the client.
type Remote interface {
	SendMessage(data []byte) error
}

// Endpoint dispatches complete JSON-RPC messages to a Handler and sends
// the assembled replies to a Remote.
//
// An Endpoint holds no state between messages: every message is classified
// and dispatched independently, so malformed input cannot corrupt the
// processing of later messages. Endpoints are not safe for concurrent use;
// the framing layer must deliver one message at a time.
type Endpoint struct {
	handler Handler
	remote  Remote
}

// New creates an endpoint dispatching to handler and replying via remote.
func New(handler Handler, remote Remote) *Endpoint {
	return &Endpoint{
		handler: handler,
		remote:  remote,
	}
}

// Remote returns the endpoint's remote.
func (e *Endpoint) Remote() Remote {
	return e.remote
}

// OnMessage dispatches one complete, already-framed JSON-RPC message.
//
// Malformed input never returns an error: unparsable text and degenerate
// batches are answered with the corresponding JSON-RPC error responses.
// The returned error reports transmission failures from the Remote only.
func (e *Endpoint) OnMessage(raw []byte) error {
	var response, notifications Buffer

	root := bytes.TrimLeft(raw, " \t\r\n")
	switch {
	case !json.Valid(raw):
		writeErrorResponse(&response, protocol.NewParseError("invalid JSON"))
	case len(root) > 0 && root[0] == '[':
		e.dispatchBatch(raw, &response, &notifications)
	default:
		e.dispatchUnit(raw, raw, &response, &notifications, false)
	}

	if response.Len() > 0 {
		if err := e.remote.SendMessage(response.Bytes()); err != nil {
			return fmt.Errorf("send response: %w", err)
		}
	}
	for _, msg := range notifications.Messages() {
		if err := e.remote.SendMessage(msg); err != nil {
			return fmt.Errorf("send notification: %w", err)
		}
	}
	return nil
}

// dispatchBatch fans a batch array out to the handler, collecting the
// responses of request-shaped units into one response array in input
// order. An all-notification batch still produces (and transmits) the
// empty array; an empty batch is invalid per JSON-RPC 2.0 and is answered
// with a single error response instead.
func (e *Endpoint) dispatchBatch(raw []byte, response, notifications *Buffer) {
	var units []json.RawMessage
	if err := json.Unmarshal(raw, &units); err != nil {
		writeErrorResponse(response, protocol.NewInvalidRequest(err.Error()))
		return
	}
	if len(units) == 0 {
		writeErrorResponse(response, protocol.NewInvalidRequest("batch must not be empty"))
		return
	}

	response.WriteString("[")
	openLen := response.Len()
	for _, unit := range units {
		e.dispatchUnit(raw, unit, response, notifications, response.Len() != openLen)
	}
	response.WriteString("]")
}

// dispatchUnit classifies one unit as request or notification by the
// presence of its id member and routes it. Units that are not JSON objects
// produce an invalid-request entry in the response channel; a failing unit
// never aborts its siblings.
func (e *Endpoint) dispatchUnit(raw []byte, unit json.RawMessage, response, notifications *Buffer, needComma bool) {
	var req protocol.Request
	trimmed := bytes.TrimLeft(unit, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(unit, &req) != nil {
		if needComma {
			response.WriteString(",")
		}
		writeErrorResponse(response, protocol.NewInvalidRequest("request must be an object"))
		return
	}

	if req.IsNotification() {
		e.handler.HandleNotification(raw, &req, notifications)
		notifications.EndMessage()
		return
	}

	if needComma {
		response.WriteString(",")
	}
	e.handler.HandleRequest(raw, &req, response)
}

// writeErrorResponse appends an error response with a null id; it is used
// where no request identifier is recoverable.
func writeErrorResponse(b *Buffer, rpcErr *protocol.Error) {
	// Marshaling a Response built from these inputs cannot fail.
	_ = b.AppendJSON(protocol.NewErrorResponse(protocol.NullID, rpcErr))
}
